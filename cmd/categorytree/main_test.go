package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-categorias/pkg/jwt"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sample = `[
	{"id":"a","name":"Root","parentId":null},
	{"id":"b","name":"Mid","parentId":"a"},
	{"id":"c","name":"Leaf","parentId":"b"}
]`

func TestTree_JSON(t *testing.T) {
	out, err := run(t, "", "tree", "--input", writeFile(t, "cats.json", sample))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"Root","parentId":null,"children":[
		{"id":"b","name":"Mid","parentId":"a","children":[
			{"id":"c","name":"Leaf","parentId":"b","children":[]}
		]}
	]}]`, out)
}

func TestOptions_ExcluyeSoloElNodo(t *testing.T) {
	out, err := run(t, sample, "options", "--input", "-", "--exclude", "b")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Root","value":"a"},{"title":"Leaf","value":"c"}]`, out)
}

func TestOptions_CSV(t *testing.T) {
	path := writeFile(t, "legado.csv", "id,name,parent_id\n1,Aseo,\n2,Jabones,1\n")
	out, err := run(t, "", "options", "--input", path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Aseo","value":"1","children":[{"title":"Jabones","value":"2"}]}]`, out)
}

func TestFuenteObligatoria(t *testing.T) {
	_, err := run(t, "", "tree")
	assert.Error(t, err)

	_, err = run(t, "", "tree", "--input", writeFile(t, "cats.txt", sample))
	assert.Error(t, err)

	_, err = run(t, "", "tree", "--remote")
	assert.Error(t, err, "--remote sin --company")
}

func TestToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := run(t, "", "token", "--user", "u1", "--company", "c1", "--role", "bodeguero")
	require.NoError(t, err)

	userID, companyID, role, err := jwt.Parse("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, "bodeguero", role)
}
