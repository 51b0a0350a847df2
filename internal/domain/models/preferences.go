package models

import "errors"

// ErrBlankProfileName rejects a profile save without a name.
var ErrBlankProfileName = errors.New("profile name must not be blank")

// Profile is the user's display identity.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Preferences bundles every persisted user setting.
type Preferences struct {
	Profile  Profile `json:"profile"`
	TestMode bool    `json:"test_mode"`
}

// Mode maps the fast-test flag to a reminder mode.
func (p Preferences) Mode() ReminderMode {
	if p.TestMode {
		return ModeFastTest
	}
	return ModeNormal
}
