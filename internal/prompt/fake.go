package prompt

// Scripted is a [Confirmer] for tests. It records every question and
// answers from Answers in order; questions beyond the list are answered no.
type Scripted struct {
	Answers   []bool
	Questions []string
}

// Confirm records question and returns the next scripted answer.
func (s *Scripted) Confirm(question string) (bool, error) {
	s.Questions = append(s.Questions, question)
	if len(s.Answers) == 0 {
		return false, nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}
