package workspace

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gorewood/shipwright/internal/output"
)

// manifestFile is the subset of a workspace manifest decoded for inspection.
type manifestFile struct {
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// Exclude removes member from the workspace manifest at path.
// Reports whether the file changed.
func Exclude(path, member string) (bool, error) {
	return toggleFile(path, member, false)
}

// Include appends member to the workspace manifest at path if absent.
// Reports whether the file changed.
func Include(path, member string) (bool, error) {
	return toggleFile(path, member, true)
}

// Members decodes the manifest at path and returns its workspace members.
func Members(path string) ([]string, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var decoded manifestFile
	meta, err := toml.Decode(content, &decoded)
	if err != nil {
		return nil, output.NewUserErrorWithCause("failed to parse "+path, err)
	}
	if !meta.IsDefined("workspace", "members") {
		return nil, output.NewUserErrorWithCause(path+": "+ErrMembersNotFound.Error(), ErrMembersNotFound)
	}
	return decoded.Workspace.Members, nil
}

func toggleFile(path, member string, present bool) (bool, error) {
	content, err := readFile(path)
	if err != nil {
		return false, err
	}

	updated, err := Toggle(content, member, present)
	if err != nil {
		return false, output.NewUserErrorWithCause("error updating "+path+": "+err.Error(), err)
	}
	if updated == content {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, output.NewSystemErrorWithCause("failed to stat "+path, err)
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, output.NewSystemErrorWithCause("failed to write "+path, err)
	}
	return true, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", output.NewUserError(path + " not found")
		}
		return "", output.NewSystemErrorWithCause("failed to read "+path, err)
	}
	return string(data), nil
}

// Has reports whether member is listed in the workspace manifest at path,
// using the same scan as [Toggle].
func Has(path, member string) (bool, error) {
	content, err := readFile(path)
	if err != nil {
		return false, err
	}
	ok, err := Contains(content, member)
	if err != nil {
		return false, output.NewUserErrorWithCause("error reading "+path+": "+err.Error(), err)
	}
	return ok, nil
}
