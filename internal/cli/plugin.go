package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/compiler"
	"gopkg.wendlang.org/wendc/internal/fs"
)

// The plugin exchange is one protobuf Struct each way. The request is
//
//	{compiler: {name, version, grammar}, parameters: [string], files: [{path, ast}]}
//
// where ast is the tree as produced by ast.Encode. The reply is
//
//	{error: string, files: [{name, content}]}
//
// A non-empty error fails the run.

func pluginRequest(c *compiler.Compiler, params []string, results []*compiler.Result) (*structpb.Struct, error) {
	files := make([]*structpb.Value, 0, len(results))
	for _, res := range results {
		tree, err := ast.Encode(res.Program)
		if err != nil {
			return nil, err
		}
		files = append(files, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"path": structpb.NewStringValue(res.Path),
			"ast":  structpb.NewStructValue(tree),
		}}))
	}
	parameters := make([]*structpb.Value, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, structpb.NewStringValue(p))
	}
	g := c.Grammar()
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"compiler": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"name":    structpb.NewStringValue("wendc"),
			"version": structpb.NewStringValue(Version),
			"grammar": structpb.NewStringValue(g.Name() + " " + g.Version()),
		}}),
		"parameters": structpb.NewListValue(&structpb.ListValue{Values: parameters}),
		"files":      structpb.NewListValue(&structpb.ListValue{Values: files}),
	}}, nil
}

// runPlugin sends the checked files to the plugin and writes the files it
// returns. It returns the paths written.
func runPlugin(ctx context.Context, c *compiler.Compiler, op *checkOptions, results []*compiler.Result) ([]string, error) {
	request, err := pluginRequest(c, op.pluginParams, results)
	if err != nil {
		return nil, err
	}
	requestBytes, err := proto.Marshal(request)
	if err != nil {
		return nil, err
	}

	var pluginOut bytes.Buffer
	var pluginErr bytes.Buffer
	cmd := exec.CommandContext(ctx, op.plugin)
	cmd.Stdin = bytes.NewReader(requestBytes)
	cmd.Stdout = &pluginOut
	cmd.Stderr = &pluginErr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("plugin %s: %w: %s", op.plugin, err, strings.TrimSpace(pluginErr.String()))
	}

	response := &structpb.Struct{}
	if err := proto.Unmarshal(pluginOut.Bytes(), response); err != nil {
		return nil, fmt.Errorf("plugin %s: invalid reply: %w", op.plugin, err)
	}
	if msg := response.GetFields()["error"].GetStringValue(); msg != "" {
		return nil, fmt.Errorf("plugin %s: %s", op.plugin, msg)
	}

	out, err := fs.NewFileSystemLocal(op.output)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, v := range response.GetFields()["files"].GetListValue().GetValues() {
		fields := v.GetStructValue().GetFields()
		name := fields["name"].GetStringValue()
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return written, fmt.Errorf("plugin %s: refusing to write %q outside the output directory", op.plugin, name)
		}
		if err := out.Write(ctx, name, fields["content"].GetStringValue()); err != nil {
			return written, err
		}
		written = append(written, filepath.Join(op.output, filepath.FromSlash(name)))
	}
	return written, nil
}
