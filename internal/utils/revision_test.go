package utils

/*

go test -run 'TestParseRevision' -v ./internal/utils -count=1

*/

import "testing"

func TestParseRevision(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantNil bool
		wantErr bool
	}{
		{in: "", wantNil: true},
		{in: "7", want: 7},
		{in: `"12"`, want: 12},
		{in: `W/"3"`, want: 3},
		{in: "abc", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-2", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseRevision(tc.in)
		switch {
		case tc.wantErr:
			if err == nil {
				t.Fatalf("in=%q: want error, got %v", tc.in, got)
			}
		case tc.wantNil:
			if err != nil || got != nil {
				t.Fatalf("in=%q: want nil, got %v err=%v", tc.in, got, err)
			}
		default:
			if err != nil || got == nil || *got != tc.want {
				t.Fatalf("in=%q: want %d, got %v err=%v", tc.in, tc.want, got, err)
			}
		}
	}
	if RevisionETag(9) != `"9"` {
		t.Fatalf("etag: %s", RevisionETag(9))
	}
}
