package credential

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestFileStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file is written
		writeIt bool
		wantErr error
	}{
		{
			name:    "missing file",
			writeIt: false,
			wantErr: ErrNoCredential,
		},
		{
			name:    "invalid JSON",
			content: "{not json",
			writeIt: true,
			wantErr: ErrNoCredential,
		},
		{
			name:    "empty access token",
			content: `{"access_token":"","refresh_token":"r1","expires_in":3599}`,
			writeIt: true,
			wantErr: ErrNoCredential,
		},
		{
			name:    "literal null access token from jq predecessor",
			content: `{"access_token":"null","refresh_token":"null","expires_in":0}`,
			writeIt: true,
			wantErr: ErrNoCredential,
		},
		{
			name:    "valid credential",
			content: `{"access_token":"a1","refresh_token":"r1","expires_in":3599}`,
			writeIt: true,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credential.json")
			if tt.writeIt {
				if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
					t.Fatalf("writing fixture: %v", err)
				}
			}

			store, err := NewFileStore(path)
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}

			cred, err := store.Load()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cred.AccessToken != "a1" || cred.RefreshToken != "r1" {
				t.Errorf("Load() = %+v, want access a1 / refresh r1", cred)
			}
		})
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credential.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	obtained := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	want := &Credential{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-def",
		ExpiresIn:    3599,
		TokenType:    "Bearer",
		Scope:        "Mail.ReadWrite Calendars.ReadWrite",
		ObtainedAt:   obtained,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != want.AccessToken ||
		got.RefreshToken != want.RefreshToken ||
		got.ExpiresIn != want.ExpiresIn ||
		got.TokenType != want.TokenType ||
		got.Scope != want.Scope ||
		!got.ObtainedAt.Equal(want.ObtainedAt) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("credential file mode = %o, want 600", perm)
		}
	}
}

func TestFileStore_SaveReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	first := &Credential{AccessToken: "old-access", RefreshToken: "old-refresh", ExpiresIn: 3599}
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second := &Credential{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 3599}
	if err := store.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "old-access") || strings.Contains(string(data), "old-refresh") {
		t.Errorf("old tokens still present after Save: %s", data)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != "new-access" || got.RefreshToken != "new-refresh" {
		t.Errorf("Load() = %+v, want the replacement tokens", got)
	}
}

func TestDefaultStorePath(t *testing.T) {
	path, err := DefaultStorePath()
	if err != nil {
		t.Skipf("no user cache dir in this environment: %v", err)
	}
	if !strings.Contains(path, storeDirName) {
		t.Errorf("DefaultStorePath() = %q, want it to contain %q", path, storeDirName)
	}
	if filepath.Base(path) != storeFileName {
		t.Errorf("DefaultStorePath() = %q, want base %q", path, storeFileName)
	}
}

func TestCredential_Expired(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		skew time.Duration
		want bool
	}{
		{
			name: "unknown obtained time is never expired",
			cred: Credential{AccessToken: "a", ExpiresIn: 3599},
			skew: 5 * time.Minute,
			want: false,
		},
		{
			name: "freshly obtained",
			cred: Credential{AccessToken: "a", ExpiresIn: 3599, ObtainedAt: time.Now()},
			skew: 5 * time.Minute,
			want: false,
		},
		{
			name: "obtained two hours ago with one hour lifetime",
			cred: Credential{AccessToken: "a", ExpiresIn: 3599, ObtainedAt: time.Now().Add(-2 * time.Hour)},
			skew: 5 * time.Minute,
			want: true,
		},
		{
			name: "inside the skew window counts as expired",
			cred: Credential{AccessToken: "a", ExpiresIn: 3599, ObtainedAt: time.Now().Add(-58 * time.Minute)},
			skew: 5 * time.Minute,
			want: true,
		},
		{
			name: "zero expires_in is never expired",
			cred: Credential{AccessToken: "a", ObtainedAt: time.Now().Add(-24 * time.Hour)},
			skew: 5 * time.Minute,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Expired(tt.skew); got != tt.want {
				t.Errorf("Expired(%v) = %v, want %v", tt.skew, got, tt.want)
			}
		})
	}
}

func TestCredential_ExpiresAt(t *testing.T) {
	obtained := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	cred := Credential{AccessToken: "a", ExpiresIn: 3600, ObtainedAt: obtained}

	want := obtained.Add(time.Hour)
	if got := cred.ExpiresAt(); !got.Equal(want) {
		t.Errorf("ExpiresAt() = %v, want %v", got, want)
	}

	unknown := Credential{AccessToken: "a", ExpiresIn: 3600}
	if got := unknown.ExpiresAt(); !got.IsZero() {
		t.Errorf("ExpiresAt() without ObtainedAt = %v, want zero time", got)
	}
}
