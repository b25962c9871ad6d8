// Package mode describes the parent's declared capacity for a week.
//
// A Mode crossed with custody presence gives one of six descriptors: the
// label, emoji and guidance shown for the week. The table is closed and the
// lookup is total: unknown modes are read as regular.
package mode

import "fmt"

// Mode is the self-declared capacity for a week.
type Mode string

const (
	Regular Mode = "regular"
	Hard    Mode = "hard"
	Hardest Mode = "hardest"
)

// validModes is the set of allowed modes.
var validModes = map[Mode]bool{
	Regular: true,
	Hard:    true,
	Hardest: true,
}

// Validate returns an error if the mode is not recognized.
func Validate(m Mode) error {
	if !validModes[m] {
		return fmt.Errorf("invalid mode %q: must be one of: regular, hard, hardest", m)
	}
	return nil
}

// Normalize maps unknown or empty modes to Regular.
func Normalize(m Mode) Mode {
	if validModes[m] {
		return m
	}
	return Regular
}

// Descriptor is the human-facing view of a (mode, custody) pair.
type Descriptor struct {
	Mode     Mode     `json:"mode"`
	Emoji    string   `json:"emoji"`
	Name     string   `json:"name"`
	Subtitle string   `json:"subtitle"`
	Guidance string   `json:"guidance"`
	ChooseIf string   `json:"choose_if"`
	Includes []string `json:"includes"`
}

type tableKey struct {
	mode    Mode
	hasKids bool
}

var table = map[tableKey]Descriptor{
	{Regular, true}: {
		Emoji:    "🟢",
		Name:     "Regular",
		Subtitle: "Normal week, full routine",
		Guidance: "Normal routine mode. Follow the full routine with the kids.",
		ChooseIf: "Normal week, usual support available",
		Includes: []string{"Full meals together", "Homework help", "Bedtime routines", "Quality time with kids"},
	},
	{Hard, true}: {
		Emoji:    "🟡",
		Name:     "Hard",
		Subtitle: "Simplified expectations",
		Guidance: "You're in Hard Mode. Screens are fine, easy meals count as meals, " +
			"homework is optional and bedtimes can flex.",
		ChooseIf: "High stress, limited support, or surviving",
		Includes: []string{"Easy meals OK", "Homework optional", "Flexible bedtimes", "Unlimited screens"},
	},
	{Hardest, true}: {
		Emoji:    "🔴",
		Name:     "Survival",
		Subtitle: "Bare minimum only",
		Guidance: "You're in Survival Mode. Everyone alive and fed is a win. Nothing else is required.",
		ChooseIf: "Crisis mode, need everyone alive and fed",
		Includes: []string{"Kids fed (anything counts)", "Kids supervised", "Kids eventually in bed", "That's it."},
	},
	{Regular, false}: {
		Emoji:    "🟢",
		Name:     "Regular Solo",
		Subtitle: "Balanced recovery & prep",
		Guidance: "Balanced recovery and prep week. Rest, handle admin, get ready for the kids week.",
		ChooseIf: "Normal energy, balanced week ahead",
		Includes: []string{"Good sleep (not excessive)", "Meal prep for kids week", "Admin & appointments", "Social time & hobbies"},
	},
	{Hard, false}: {
		Emoji:    "🟡",
		Name:     "Recovery",
		Subtitle: "Extra rest - you're depleted",
		Guidance: "You're in Recovery Mode. Sleep as much as you need and keep obligations minimal.",
		ChooseIf: "Exhausted after hard kids week",
		Includes: []string{"Sleep as much as needed", "Minimal obligations", "Gentle self-care", "No guilt about rest"},
	},
	{Hardest, false}: {
		Emoji:    "🔴",
		Name:     "Hustle",
		Subtitle: "High prep mode",
		Guidance: "You're in Hustle Mode. Batch cook, book appointments and get the house ready for a tough kids week.",
		ChooseIf: "Preparing for tough kids week ahead",
		Includes: []string{"Batch cook 5+ meals", "All appointments scheduled", "House fully organized", "Deep work on projects"},
	},
}

// Describe returns the descriptor for m given custody presence.
// Unknown modes fall back to Regular.
func Describe(m Mode, hasKids bool) Descriptor {
	m = Normalize(m)
	d := table[tableKey{m, hasKids}]
	d.Mode = m
	d.Includes = append([]string(nil), d.Includes...)
	return d
}

// Options lists the three descriptors offered for a week with or without kids,
// in Regular, Hard, Hardest order.
func Options(hasKids bool) []Descriptor {
	return []Descriptor{
		Describe(Regular, hasKids),
		Describe(Hard, hasKids),
		Describe(Hardest, hasKids),
	}
}

// TemplateID returns the id of the standard template for a mode and custody
// state. Unknown modes use the regular template.
func TemplateID(m Mode, kidsPresent bool) string {
	switch Normalize(m) {
	case Hard:
		if kidsPresent {
			return "hard-with-kids"
		}
		return "recovery-solo"
	case Hardest:
		if kidsPresent {
			return "hardest-survival"
		}
		return "hustle-solo"
	default:
		if kidsPresent {
			return "regular-with-kids"
		}
		return "regular-solo"
	}
}
