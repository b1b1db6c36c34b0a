package models

// SkillLevel is the proficiency scale for technical and soft skills.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillExpert       SkillLevel = "Expert"
)

// Ordinal returns the level's position on the scale, 1 for Beginner through
// 4 for Expert, and 0 for unknown values.
func (l SkillLevel) Ordinal() int {
	switch l {
	case SkillBeginner:
		return 1
	case SkillIntermediate:
		return 2
	case SkillAdvanced:
		return 3
	case SkillExpert:
		return 4
	default:
		return 0
	}
}

func (l SkillLevel) Valid() bool { return l.Ordinal() > 0 }

// LanguageLevel is the proficiency scale for spoken languages.
type LanguageLevel string

const (
	LanguageBasic          LanguageLevel = "Basic"
	LanguageConversational LanguageLevel = "Conversational"
	LanguageFluent         LanguageLevel = "Fluent"
	LanguageNative         LanguageLevel = "Native"
)

// Ordinal returns 1 for Basic through 4 for Native, 0 for unknown values.
func (l LanguageLevel) Ordinal() int {
	switch l {
	case LanguageBasic:
		return 1
	case LanguageConversational:
		return 2
	case LanguageFluent:
		return 3
	case LanguageNative:
		return 4
	default:
		return 0
	}
}

func (l LanguageLevel) Valid() bool { return l.Ordinal() > 0 }

// Importance separates mandatory from desirable requirements.
type Importance string

const (
	MustHave   Importance = "MustHave"
	NiceToHave Importance = "NiceToHave"
)

func (i Importance) Valid() bool {
	return i == MustHave || i == NiceToHave
}
