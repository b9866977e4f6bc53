package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/bingo/assets"
)

func run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = Run(args, strings.NewReader(stdin), &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func TestExampleFirstAndLast(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-example"}, "4512\n"},
		{[]string{"-example", "-mode", "first"}, "4512\n"},
		{[]string{"-example", "-mode", "last"}, "1924\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, out, errOut := run(t, "", tt.args...)
			if code != ExitOK || out != tt.want {
				t.Fatalf("code=%d out=%q stderr=%q; want %q", code, out, errOut, tt.want)
			}
		})
	}
}

func TestInputFileAndStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzle.txt")
	if err := os.WriteFile(path, []byte(assets.Example()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code, out, _ := run(t, "", "-input", path, "-mode", "last"); code != ExitOK || out != "1924\n" {
		t.Fatalf("file: code=%d out=%q", code, out)
	}
	if code, out, _ := run(t, assets.Example(), "-input", "-"); code != ExitOK || out != "4512\n" {
		t.Fatalf("stdin: code=%d out=%q", code, out)
	}
}

func TestVerboseJSON(t *testing.T) {
	code, out, _ := run(t, "", "-example", "-v")
	if code != ExitOK {
		t.Fatalf("code = %d", code)
	}
	var got struct {
		Mode        string `json:"mode"`
		BoardIndex  int    `json:"boardIndex"`
		Draw        int    `json:"draw"`
		Turn        int    `json:"turn"`
		UnmarkedSum int    `json:"unmarkedSum"`
		Score       int    `json:"score"`
		Cells       []int  `json:"cells"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Mode != "first" || got.BoardIndex != 2 || got.Draw != 24 || got.Turn != 12 ||
		got.UnmarkedSum != 188 || got.Score != 4512 || len(got.Cells) != 25 || got.Cells[0] != 14 {
		t.Fatalf("got %+v", got)
	}
}

func TestNoWinner(t *testing.T) {
	in := "99\n\n1 2\n3 4\n"
	code, out, errOut := run(t, in, "-input", "-")
	if code != ExitNoWinner || out != "" {
		t.Fatalf("code=%d out=%q", code, out)
	}
	if !strings.Contains(errOut, "no board won") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"no input", "", nil},
		{"both inputs", "", []string{"-example", "-input", "x.txt"}},
		{"bad mode", "", []string{"-example", "-mode", "middle"}},
		{"unknown flag", "", []string{"-nope"}},
		{"missing file", "", []string{"-input", filepath.Join(os.TempDir(), "does-not-exist-bingo.txt")}},
		{"bad number", "1,x\n\n1 2\n3 4\n", []string{"-input", "-"}},
		{"non-square board", "1\n\n1 2 3\n4 5 6\n", []string{"-input", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := run(t, tt.stdin, tt.args...)
			if code != ExitUsage || out != "" {
				t.Fatalf("code=%d out=%q; want %d", code, out, ExitUsage)
			}
		})
	}
}
