package encryption

import "testing"

func TestFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cipherType string
		options    []string
		wantExt    string
		wantErr    bool
	}{
		{name: "default is age", wantExt: ".age"},
		{name: "age with options", cipherType: "age", options: []string{"armor"}, wantExt: ".age"},
		{name: "age with bad option", cipherType: "age", options: []string{"bogus"}, wantErr: true},
		{name: "test", cipherType: "test", wantExt: ".enc"},
		{name: "test with options", cipherType: "test", options: []string{"armor"}, wantErr: true},
		{name: "unknown", cipherType: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Factory(tt.cipherType)(tt.options)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Factory() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Factory() error = %v", err)
			}
			if got := c.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}
