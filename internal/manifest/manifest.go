// Package manifest reads and rewrites the version field of package manifests.
//
// The version is an opaque token: the first `version = "..."` assignment in
// the file is the package version. It is never parsed into components.
package manifest

import (
	"errors"
	"os"
	"regexp"

	"github.com/gorewood/shipwright/internal/output"
)

var versionPattern = regexp.MustCompile(`version = "([^"]+)"`)

// ReadVersion returns the first version value in the manifest at path.
func ReadVersion(path string) (string, error) {
	content, err := readManifest(path)
	if err != nil {
		return "", err
	}
	m := versionPattern.FindStringSubmatch(content)
	if m == nil {
		return "", output.NewUserError("could not find version in " + path)
	}
	return m[1], nil
}

// UpdateVersion rewrites the first version value in the manifest at path.
// The file must exist and contain a version assignment; all other bytes are
// left untouched.
func UpdateVersion(path, version string) error {
	content, err := readManifest(path)
	if err != nil {
		return err
	}
	updated, ok := ReplaceVersion(content, version)
	if !ok {
		return output.NewUserError("could not find version in " + path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to stat "+path, err)
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return output.NewSystemErrorWithCause("failed to write "+path, err)
	}
	return nil
}

// ReplaceVersion replaces exactly the first version assignment in content.
// Reports false when content has no version assignment.
func ReplaceVersion(content, version string) (string, bool) {
	loc := versionPattern.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	return content[:loc[0]] + `version = "` + version + `"` + content[loc[1]:], true
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func readManifest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", output.NewUserError(path + " not found")
		}
		return "", output.NewSystemErrorWithCause("failed to read "+path, err)
	}
	return string(data), nil
}
