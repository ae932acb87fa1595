package correlation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    *Config
		wantErr string
		isInval bool
	}{
		{
			name: "empty document",
			yaml: "",
			want: &Config{Server: DefaultOptions()},
		},
		{
			name: "null server",
			yaml: "server:\n",
			want: &Config{Server: DefaultOptions()},
		},
		{
			name: "server overrides keep other defaults",
			yaml: `
server:
  accepted_header_names: [X-Correlation-Id, X-Request-Id]
  enrich_log: false
`,
			want: &Config{Server: func() Options {
				o := DefaultOptions()
				o.AcceptedHeaderNames = []string{"X-Correlation-Id", "X-Request-Id"}
				o.EnrichLog = false
				return o
			}()},
		},
		{
			name: "clients start from defaults",
			yaml: `
clients:
  billing:
    default_header_name: X-Billing-Correlation
  search: {}
`,
			want: &Config{
				Server: DefaultOptions(),
				Clients: map[string]Options{
					"billing": func() Options {
						o := DefaultOptions()
						o.DefaultHeaderName = "X-Billing-Correlation"
						return o
					}(),
					"search": DefaultOptions(),
				},
			},
		},
		{
			name:    "unknown top level key",
			yaml:    "serve: {}\n",
			wantErr: "field serve not found",
		},
		{
			name:    "unknown option key",
			yaml:    "server:\n  enrich_logs: true\n",
			wantErr: `unknown field "enrich_logs"`,
		},
		{
			name:    "unknown client option key",
			yaml:    "clients:\n  billing:\n    header: X\n",
			wantErr: `client "billing"`,
		},
		{
			name:    "server is not a mapping",
			yaml:    "server: [a]\n",
			wantErr: "expected a mapping",
		},
		{
			name:    "blank accepted header",
			yaml:    "server:\n  accepted_header_names: [X-A, '']\n",
			wantErr: "accepted_header_names[1] is blank",
			isInval: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadConfig(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("wanted error containing %q, got: %v", tt.wantErr, err)
				}
				if tt.isInval && !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("wanted ErrInvalidConfig, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "correlation.yaml")
	if err := os.WriteFile(path, []byte("server:\n  write_to_response: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.WriteToResponse {
		t.Error("wanted write_to_response false")
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("wanted error for missing file")
	}
}
