package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const envTestPlugin = "WENDC_TEST_PLUGIN"

// TestMain doubles as the plugin used by TestCheckPlugin: the test binary
// re-executes itself with envTestPlugin set.
func TestMain(m *testing.M) {
	if os.Getenv(envTestPlugin) != "" {
		os.Exit(fakePlugin(os.Stdin, os.Stdout))
	}
	os.Exit(m.Run())
}

// fakePlugin answers with one file listing each input and its statement
// count.
func fakePlugin(in io.Reader, out io.Writer) int {
	data, err := io.ReadAll(in)
	if err != nil {
		return 1
	}
	request := &structpb.Struct{}
	if err := proto.Unmarshal(data, request); err != nil {
		return 1
	}
	reply := map[string]any{}
	var b strings.Builder
	for _, p := range request.GetFields()["parameters"].GetListValue().GetValues() {
		if p.GetStringValue() == "fail" {
			reply["error"] = "asked to fail"
		}
		fmt.Fprintf(&b, "param %s\n", p.GetStringValue())
	}
	for _, f := range request.GetFields()["files"].GetListValue().GetValues() {
		fields := f.GetStructValue().GetFields()
		body := fields["ast"].GetStructValue().GetFields()["body"].GetListValue().GetValues()
		fmt.Fprintf(&b, "%s %d\n", filepath.Base(fields["path"].GetStringValue()), len(body))
	}
	reply["files"] = []any{map[string]any{"name": "gen/summary.txt", "content": b.String()}}
	response, err := structpb.NewStruct(reply)
	if err != nil {
		return 1
	}
	encoded, err := proto.Marshal(response)
	if err != nil {
		return 1
	}
	_, _ = out.Write(encoded)
	return 0
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	dir := t.TempDir()
	vars := map[string]string{
		"XDG_CONFIG_HOME": dir,
		"XDG_CONFIG_DIRS": dir,
		"XDG_DATA_DIRS":   dir,
		"APPDATA":         dir,
		"ProgramData":     dir,
	}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
	var out, errOut bytes.Buffer
	code := Main(context.Background(), args, Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut}, lookup)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func sources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{
		"good.wd":   "num x = 1\nwhile x < 3\n    x = x + 1\n",
		"bad.wd":    "num total = 0\nif total > 0\n    break\n",
		"notes.txt": "ignored",
	})
	res := run(t, "", "check", "--color", "never", dir)
	require.Equal(t, 1, res.code, res.stderr)
	require.Equal(t, fmt.Sprintf("ok %s\n", filepath.Join(dir, "good.wd")), res.stdout)
	require.Contains(t, res.stderr, "SemanticError W0202: break statement outside loop\n")
	require.Contains(t, res.stderr, fmt.Sprintf("  --> %s:3:5\n", filepath.Join(dir, "bad.wd")))
	require.Contains(t, res.stderr, "3 |     break\n  |     ^\n")

	res = run(t, "", "check", filepath.Join(dir, "good.wd"))
	require.Equal(t, 0, res.code, res.stderr)
}

func TestCheckSyntaxError(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{"main.wd": "num x =\n"})
	res := run(t, "", "check", "--color", "never", dir)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "SyntaxError W0100: unexpected newline")
	require.Empty(t, res.stdout)
}

func TestCheckMissing(t *testing.T) {
	t.Parallel()

	res := run(t, "", "check", "--color", "never", filepath.Join(t.TempDir(), "missing.wd"))
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "Error W0001")
}

func TestCheckPlugin(t *testing.T) {
	t.Setenv(envTestPlugin, "1")

	dir := sources(t, map[string]string{
		"a.wd": "num x = 1\nprint(x)\n",
		"b.wd": "print(2)\n",
	})
	outDir := t.TempDir()
	res := run(t, "", "check", "--plugin", os.Args[0], "--plugin-param", "mode=test", "--output", outDir, dir)
	require.Equal(t, 0, res.code, res.stderr)
	summary := filepath.Join(outDir, "gen", "summary.txt")
	require.Contains(t, res.stdout, "wrote "+summary+"\n")
	content, err := os.ReadFile(summary)
	require.NoError(t, err)
	require.Equal(t, "param mode=test\na.wd 2\nb.wd 1\n", string(content))

	res = run(t, "", "check", "--plugin", os.Args[0], "--plugin-param", "fail", "--output", outDir, dir)
	require.Equal(t, 2, res.code)
	require.Contains(t, res.stderr, "asked to fail")
}

func TestTokens(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{"main.wd": "while x\n    y\n"})
	res := run(t, "", "tokens", filepath.Join(dir, "main.wd"))
	require.Equal(t, 0, res.code, res.stderr)
	lines := strings.Split(strings.TrimSuffix(res.stdout, "\n"), "\n")
	require.Equal(t, "1:1\tIdentifier\t\"while\"", lines[0])
	require.Equal(t, "2:5\tIdentifier\t\"y\"", lines[3])
	kinds := make([]string, 0, len(lines))
	for _, line := range lines {
		kinds = append(kinds, strings.Split(line, "\t")[1])
	}
	require.Equal(t, []string{"Identifier", "Identifier", "INDENT", "Identifier", "Newline", "DEDENT", "EOF"}, kinds)
}

func TestTree(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{"main.wd": "print(1)\n"})
	res := run(t, "", "tree", filepath.Join(dir, "main.wd"))
	require.Equal(t, 0, res.code, res.stderr)
	require.True(t, strings.HasPrefix(res.stdout, "program [1:1-"), res.stdout)
	require.Contains(t, res.stdout, "body: statement")
}

func TestAST(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{"main.wd": "num x = 2 * 3\n"})
	res := run(t, "", "ast", filepath.Join(dir, "main.wd"))
	require.Equal(t, 0, res.code, res.stderr)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &tree))
	require.Equal(t, "Program", tree["kind"])
	decl := tree["body"].([]any)[0].(map[string]any)
	require.Equal(t, "VariableDeclaration", decl["kind"])
	require.Equal(t, "*", decl["init"].(map[string]any)["op"])

	dir = sources(t, map[string]string{"main.wd": "break\n"})
	require.Equal(t, 1, run(t, "", "ast", filepath.Join(dir, "main.wd")).code)
	require.Equal(t, 0, run(t, "", "ast", "--unchecked", filepath.Join(dir, "main.wd")).code)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := run(t, "", "version")
	require.Equal(t, 0, res.code, res.stderr)
	require.True(t, strings.HasPrefix(res.stdout, "wendc "+Version+"\n"), res.stdout)
	require.Contains(t, res.stdout, "grammar:  wend ")
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{"main.wd": "if true\n\tprint(1)\n"})
	res := run(t, "", "check", "--log-level", "debug", "--tab-width", "8", dir)
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stderr, "run_id=")
	require.Contains(t, res.stderr, "tab_width=8")
	require.Contains(t, res.stderr, "compile finished")

	res = run(t, "", "check", "--log-level", "loud", dir)
	require.Equal(t, 2, res.code)
	require.Contains(t, res.stderr, "log.level")

	res = run(t, "", "check", "--grammar", filepath.Join(dir, "missing.yaml"), dir)
	require.Equal(t, 2, res.code)

	res = run(t, "", "check")
	require.Equal(t, 2, res.code)
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	dir := sources(t, map[string]string{
		"main.wd": "num x = 1\n",
		"config.toml": strings.Join([]string{
			"[log]",
			"level = \"info\"",
			"[grammar]",
			"path = \"" + filepath.ToSlash(filepath.Join(t.TempDir(), "none.yaml")) + "\"",
		}, "\n"),
	})
	res := run(t, "", "--config", filepath.Join(dir, "config.toml"), "check", dir)
	require.Equal(t, 2, res.code)
	require.Contains(t, res.stderr, "none.yaml")

	res = run(t, "", "--config", filepath.Join(dir, "missing.toml"), "check", dir)
	require.Equal(t, 2, res.code)
}
