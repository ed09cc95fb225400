// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import (
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // time zone validation must not depend on the host
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/holomush/identity/internal/identity"
)

const maxProfileFieldLength = 255

// Profile holds the descriptive user fields.
type Profile struct {
	FirstName  string
	MiddleName string
	LastName   string
	Nickname   string
	Birthdate  string // YYYY-MM-DD
	Gender     string
	Locale     string // BCP 47
	TimeZone   string // IANA
	Picture    string
	Profile    string
	Website    string
}

// FullName joins the non-empty name parts.
func (p Profile) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Update lists the profile changes applied by User.Update. Setting a field to
// the empty string clears it.
type Update struct {
	FirstName        identity.Change[string]
	MiddleName       identity.Change[string]
	LastName         identity.Change[string]
	Nickname         identity.Change[string]
	Birthdate        identity.Change[string]
	Gender           identity.Change[string]
	Locale           identity.Change[string]
	TimeZone         identity.Change[string]
	Picture          identity.Change[string]
	Profile          identity.Change[string]
	Website          identity.Change[string]
	CustomAttributes identity.CustomAttributesPatch
}

func (u Update) isEmpty() bool {
	for _, c := range []identity.Change[string]{
		u.FirstName, u.MiddleName, u.LastName, u.Nickname, u.Birthdate, u.Gender,
		u.Locale, u.TimeZone, u.Picture, u.Profile, u.Website,
	} {
		if c.IsSet() {
			return false
		}
	}
	return len(u.CustomAttributes) == 0
}

// event validates the update and returns the normalized event.
func (u Update) event() (*Updated, error) {
	e := &Updated{CustomAttributes: u.CustomAttributes}
	text := []struct {
		name   string
		change identity.Change[string]
		dst    **string
	}{
		{"first_name", u.FirstName, &e.FirstName},
		{"middle_name", u.MiddleName, &e.MiddleName},
		{"last_name", u.LastName, &e.LastName},
		{"nickname", u.Nickname, &e.Nickname},
		{"gender", u.Gender, &e.Gender},
	}
	for _, f := range text {
		v, ok := f.change.Value()
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if utf8.RuneCountInString(v) > maxProfileFieldLength {
			return nil, invalidProfile(f.name, "too long")
		}
		*f.dst = &v
	}

	if v, ok := u.Birthdate.Value(); ok {
		if v != "" {
			if _, err := time.Parse(time.DateOnly, v); err != nil {
				return nil, invalidProfile("birthdate", "not a YYYY-MM-DD date")
			}
		}
		e.Birthdate = &v
	}
	if v, ok := u.Locale.Value(); ok {
		if v != "" {
			tag, err := language.Parse(v)
			if err != nil {
				return nil, invalidProfile("locale", "not a BCP 47 language tag")
			}
			v = tag.String()
		}
		e.Locale = &v
	}
	if v, ok := u.TimeZone.Value(); ok {
		if v != "" {
			if _, err := time.LoadLocation(v); err != nil {
				return nil, invalidProfile("time_zone", "unknown IANA time zone")
			}
		}
		e.TimeZone = &v
	}

	links := []struct {
		name   string
		change identity.Change[string]
		dst    **string
	}{
		{"picture", u.Picture, &e.Picture},
		{"profile", u.Profile, &e.Profile},
		{"website", u.Website, &e.Website},
	}
	for _, f := range links {
		v, ok := f.change.Value()
		if !ok {
			continue
		}
		if v != "" && !isWebURL(v) {
			return nil, invalidProfile(f.name, "not an absolute http(s) URL")
		}
		*f.dst = &v
	}

	if err := u.CustomAttributes.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func isWebURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func (p *Profile) apply(e *Updated) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.FirstName, e.FirstName)
	set(&p.MiddleName, e.MiddleName)
	set(&p.LastName, e.LastName)
	set(&p.Nickname, e.Nickname)
	set(&p.Birthdate, e.Birthdate)
	set(&p.Gender, e.Gender)
	set(&p.Locale, e.Locale)
	set(&p.TimeZone, e.TimeZone)
	set(&p.Picture, e.Picture)
	set(&p.Profile, e.Profile)
	set(&p.Website, e.Website)
}
