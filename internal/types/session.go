package types

// SessionState is derived from how many questions have a recorded answer.
type SessionState string

const (
	// StateCreated means questions are assigned but nothing has been answered.
	StateCreated SessionState = "created"
	// StateInProgress means some but not all questions have been answered.
	StateInProgress SessionState = "in_progress"
	// StateComplete means every question has an answer.
	StateComplete SessionState = "complete"
)

// DeriveState maps an answered/total count pair onto a SessionState.
func DeriveState(answered, total int) SessionState {
	switch {
	case answered <= 0:
		return StateCreated
	case answered >= total:
		return StateComplete
	default:
		return StateInProgress
	}
}

// Progress summarises where a candidate is within an interview.
type Progress struct {
	State     SessionState `json:"state"`
	Answered  int          `json:"answered"`
	Total     int          `json:"total"`
	NextIndex int          `json:"next_index"`
}

// QuestionView is the answer to "give me question N". Complete is set instead of
// Question once the index runs past the end of the question set. Answered reports
// whether the question already holds an answer.
type QuestionView struct {
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Question *QuestionSpec `json:"question,omitempty"`
	Answered bool          `json:"answered"`
	Complete bool          `json:"complete"`
}

// SkillScore is the rolled-up score for one skill.
type SkillScore struct {
	Skill    string  `json:"skill"`
	Obtained int     `json:"obtained"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// Aggregate is the per-skill and overall score rollup for an interview.
type Aggregate struct {
	PerSkill        []SkillScore `json:"per_skill"`
	OverallObtained int          `json:"overall_obtained"`
	OverallTotal    int          `json:"overall_total"`
	OverallPercent  float64      `json:"overall_percent"`
}

// Skill returns the score for the named skill, if present.
func (a *Aggregate) Skill(name string) (SkillScore, bool) {
	for _, s := range a.PerSkill {
		if s.Skill == name {
			return s, true
		}
	}
	return SkillScore{}, false
}
