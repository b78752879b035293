package cli

import "testing"

func TestHashPassword(t *testing.T) {
	// Well-known MD5 of "password".
	if got := hashPassword("password"); got != "5f4dcc3b5aa765d61d8327deb882cf99" {
		t.Errorf("hashPassword = %q", got)
	}
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{
		"open":         false,
		"play":         false,
		"stream-track": false,
		"stream-album": false,
		"api":          false,
		"config":       false,
		"reset":        false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestAPISubcommands(t *testing.T) {
	want := map[string]bool{
		"search": false, "album": false, "artist": false,
		"track": false, "playlist": false,
	}
	for _, cmd := range apiCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("api subcommand %q not registered", name)
		}
	}
}
