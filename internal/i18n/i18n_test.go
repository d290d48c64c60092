// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import "testing"

func TestTranslationsPerLanguage(t *testing.T) {
	Init("en")
	if got := T("hosts.none"); got != "No host entries configured." {
		t.Fatalf("en hosts.none = %q", got)
	}

	Init("de")
	if got := T("hosts.none"); got == "No host entries configured." || got == "hosts.none" {
		t.Fatalf("de hosts.none not translated: %q", got)
	}
}

func TestUnknownIDFallsBackToID(t *testing.T) {
	Init("en")
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	Init("xx")
	if got := T("keys.none"); got != "No keys found in the SSH directory." {
		t.Fatalf("fallback language = %q", got)
	}
}
