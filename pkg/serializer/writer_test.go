/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testConfig struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	data := []testConfig{{Name: "cell-0", Value: 16}, {Name: "cell-1", Value: 8}}
	require.NoError(t, NewWriter(FormatJSON, &buf).Serialize(context.Background(), data))

	var got []testConfig
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, data, got)
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	data := []testConfig{{Name: "cell-0", Value: 16}}
	require.NoError(t, NewWriter(FormatYAML, &buf).Serialize(context.Background(), data))

	var got []testConfig
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, data, got)
}

func TestWriter_SerializeTable(t *testing.T) {
	var buf bytes.Buffer
	data := []any{testConfig{Name: "cell-0", Value: 16}, testConfig{Name: "cell-1", Value: 8}}
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), data))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "[0].Name")
	assert.Contains(t, out, "[1].Value")
}

func TestWriter_SerializeTable_Nested(t *testing.T) {
	type inner struct {
		Field1 string
		Field2 int
	}
	type outer struct {
		Name  string
		Inner inner
		Ptr   *int
		Tags  map[string]string
		Empty []string
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(),
		outer{Name: "hive", Inner: inner{Field1: "value", Field2: 42}, Tags: map[string]string{"b": "2", "a": "1"}}))

	out := buf.String()
	for _, want := range []string{"Inner.Field1", "value", "Inner.Field2", "42", "Ptr", "<nil>", "Tags.a", "Empty", "<empty>"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Tags.a")), bytes.Index(buf.Bytes(), []byte("Tags.b")))
}

type tabled struct{}

func (tabled) Table() ([]string, [][]string) {
	return []string{"case", "status"}, [][]string{{"hwstat", "passed"}, {"reboot", "skipped"}}
}

func TestWriter_SerializeTable_Tabler(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), tabled{}))

	out := buf.String()
	assert.Contains(t, out, "CASE")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "reboot")
	assert.NotContains(t, out, "FIELD")
}

func TestNewWriter_UnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter("xml", &buf).Serialize(context.Background(), testConfig{Name: "x", Value: 1}))

	var got testConfig
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "x", got.Name)
}

func TestWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	assert.ErrorIs(t, NewWriter(FormatJSON, &buf).Serialize(ctx, testConfig{}), context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestWriter_CloseTwice(t *testing.T) {
	w := NewStdoutWriter(FormatJSON)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNewFileWriterOrStdout_Stdout(t *testing.T) {
	for _, path := range []string{"", "  ", "-"} {
		w, err := NewFileWriterOrStdout(FormatJSON, path)
		require.NoError(t, err, path)
		assert.IsType(t, &Writer{}, w)
	}
}

func TestNewFileWriterOrStdout_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	w, err := NewFileWriterOrStdout(FormatYAML, path)
	require.NoError(t, err)
	require.NoError(t, w.Serialize(context.Background(), testConfig{Name: "file", Value: 7}))
	require.NoError(t, w.(Closer).Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var got testConfig
	require.NoError(t, yaml.Unmarshal(content, &got))
	assert.Equal(t, testConfig{Name: "file", Value: 7}, got)
}

func TestNewFileWriterOrStdout_InvalidPath(t *testing.T) {
	w, err := NewFileWriterOrStdout(FormatJSON, "/nonexistent/path/file.json")
	assert.Nil(t, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestNewFileWriterOrStdout_InvalidConfigMapURI(t *testing.T) {
	for _, uri := range []string{"cm://namespace", "cm:///name", "cm://", "cm://ns/a/b"} {
		w, err := NewFileWriterOrStdout(FormatJSON, uri)
		assert.Nil(t, w, uri)
		require.Error(t, err, uri)
		assert.Contains(t, err.Error(), "invalid ConfigMap URI")
	}
}

func TestFormats(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.False(t, FormatTable.IsUnknown())
	assert.True(t, Format("").IsUnknown())
	assert.True(t, Format("xml").IsUnknown())
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())

	assert.Equal(t, FormatYAML, ParseFormat(" YML "))
	assert.Equal(t, FormatYAML, FormatFromPath("/tmp/snap.yml"))
	assert.Equal(t, FormatTable, FormatFromPath("report.txt"))
	assert.Equal(t, FormatJSON, FormatFromPath("report"))
}
