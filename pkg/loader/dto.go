package loader

import "time"

// Document is a screen graph topology as written in YAML.
type Document struct {
	Initial string              `mapstructure:"initial"`
	State   map[string]FieldDTO `mapstructure:"state"`
	Screens []ScreenDTO         `mapstructure:"screens"`
	Actions []ActionDTO         `mapstructure:"actions"`
}

// FieldDTO declares a user state field.
type FieldDTO struct {
	Type    string `mapstructure:"type"`
	Default any    `mapstructure:"default"`
}

// ScreenDTO declares a screen and its outgoing edges, in order.
type ScreenDTO struct {
	Name         string      `mapstructure:"name"`
	OnEnter      *OnEnterDTO `mapstructure:"on_enter"`
	DismissOnUse bool        `mapstructure:"dismiss_on_use"`
	Back         *EffectDTO  `mapstructure:"back"`
	Edges        []EdgeDTO   `mapstructure:"edges"`
}

// OnEnterDTO is the screen's recognition check. Every listed element must be
// present (exists) or missing (absent); read copies element values into
// fields once the screen is verified.
type OnEnterDTO struct {
	Exists []string          `mapstructure:"exists"`
	Absent []string          `mapstructure:"absent"`
	Read   map[string]string `mapstructure:"read"`
}

// EffectDTO selects exactly one interaction.
type EffectDTO struct {
	Tap   string    `mapstructure:"tap"`
	Press *PressDTO `mapstructure:"press"`
	Swipe *SwipeDTO `mapstructure:"swipe"`
	Type  *TypeDTO  `mapstructure:"type"`
	Noop  bool      `mapstructure:"noop"`
}

type PressDTO struct {
	Locator  string        `mapstructure:"locator"`
	Duration time.Duration `mapstructure:"duration"`
}

type SwipeDTO struct {
	Locator   string `mapstructure:"locator"`
	Direction string `mapstructure:"direction"`
}

type TypeDTO struct {
	Locator string `mapstructure:"locator"`
	Text    string `mapstructure:"text"`
	Param   string `mapstructure:"param"`
}

// EdgeDTO is an edge: an effect, an optional destination, guard, action names
// and mutators.
type EdgeDTO struct {
	EffectDTO `mapstructure:",squash"`

	To       string            `mapstructure:"to"`
	If       string            `mapstructure:"if"`
	Actions  []string          `mapstructure:"actions"`
	Set      map[string]any    `mapstructure:"set"`
	Toggle   []string          `mapstructure:"toggle"`
	SetParam map[string]string `mapstructure:"set_param"`
}

// ActionDTO registers an action pseudo-node.
type ActionDTO struct {
	Name   string         `mapstructure:"name"`
	To     string         `mapstructure:"to"`
	Set    map[string]any `mapstructure:"set"`
	Toggle []string       `mapstructure:"toggle"`
}
