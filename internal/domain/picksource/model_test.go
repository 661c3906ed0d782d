package picksource

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		hasAuth        bool
		hasAnon        bool
		override       *Override
		wantSource     Source
		wantOverridden bool
	}{
		{name: "no picks", wantSource: SourceNone},
		{name: "authenticated only", hasAuth: true, wantSource: SourceAuthenticated},
		{name: "anonymous only", hasAnon: true, wantSource: SourceAnonymous},
		{name: "authenticated supersedes anonymous", hasAuth: true, hasAnon: true, wantSource: SourceAuthenticated},
		{
			name:           "override prefers anonymous",
			hasAuth:        true,
			hasAnon:        true,
			override:       &Override{Preferred: SourceAnonymous},
			wantSource:     SourceAnonymous,
			wantOverridden: true,
		},
		{
			name:       "override ignored when preferred source empty",
			hasAuth:    true,
			override:   &Override{Preferred: SourceAnonymous},
			wantSource: SourceAuthenticated,
		},
		{
			name:           "override restating default is idempotent",
			hasAuth:        true,
			hasAnon:        true,
			override:       &Override{Preferred: SourceAuthenticated},
			wantSource:     SourceAuthenticated,
			wantOverridden: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(tc.hasAuth, tc.hasAnon, tc.override)
			if got.Source != tc.wantSource {
				t.Fatalf("unexpected source: got=%s want=%s", got.Source, tc.wantSource)
			}
			if got.Overridden != tc.wantOverridden {
				t.Fatalf("unexpected overridden flag: got=%t want=%t", got.Overridden, tc.wantOverridden)
			}
		})
	}
}
