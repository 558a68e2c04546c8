package models

// The eight fixed First Steps curriculum steps. Step keys appear in API
// paths and as map keys in Student.FirstSteps; the set never changes at
// runtime.
const (
	StepNewLife          = "new-life"
	StepBaptism          = "baptism"
	StepHolySpirit       = "holy-spirit"
	StepPrayer           = "prayer"
	StepBibleStudy       = "bible-study"
	StepChurchFamily     = "church-family"
	StepGiving           = "giving"
	StepSharingYourFaith = "sharing-your-faith"
)

// FirstStepsKeys lists the eight steps in curriculum order.
func FirstStepsKeys() []string {
	return []string{
		StepNewLife,
		StepBaptism,
		StepHolySpirit,
		StepPrayer,
		StepBibleStudy,
		StepChurchFamily,
		StepGiving,
		StepSharingYourFaith,
	}
}

// IsFirstStepsKey reports whether key names one of the eight steps.
func IsFirstStepsKey(key string) bool {
	for _, k := range FirstStepsKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// NewFirstSteps returns a progress map with all eight steps present and
// untouched. Every student row carries the full set so aggregate stats
// never have to special-case missing steps.
func NewFirstSteps() map[string]StepProgress {
	steps := make(map[string]StepProgress, 8)
	for _, k := range FirstStepsKeys() {
		steps[k] = StepProgress{}
	}
	return steps
}
