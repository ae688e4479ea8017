package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommits(t *testing.T) {
	a := strings.Repeat("a", 40)
	b := strings.Repeat("b", 40)
	c := strings.Repeat("c", 40)

	tcs := map[string]struct {
		input string
		want  []string
	}{
		"empty input":        {"", []string{}},
		"no commit in input": {"something\nsomething\ncommit 1234\nnooo", []string{}},
		"one commit":         {"commit " + a + "\nAuthor: x\n", []string{a}},
		"skips non headers": {
			"commit " + a + "\nnocommit " + b + "\ncommit " + c + "\n",
			[]string{a, c},
		},
		"indented header": {"  commit " + a + "\n", []string{}},
		"uppercase hash":  {"commit " + strings.ToUpper(a) + "\n", []string{}},
		"decorated": {
			"commit " + a + " (HEAD -> main)\n\ncommit " + b,
			[]string{a, b},
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Commits(tc.input))
		})
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("work tree", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("IsInsideWorkTree", ctx, "/repo").Return(true, nil).Once()
		i, err := New(ctx, client, "/repo")
		require.NoError(t, err)
		assert.Equal(t, "/repo", i.Root())
		client.AssertExpectations(t)
	})

	t.Run("not a repo", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("IsInsideWorkTree", ctx, "/tmp").Return(false, nil).Once()
		_, err := New(ctx, client, "/tmp")
		assert.ErrorIs(t, err, ErrNotGitRepo)
	})

	t.Run("launch failure", func(t *testing.T) {
		boom := errors.New("boom")
		client := new(contract.MockGitClient)
		client.On("IsInsideWorkTree", ctx, "/x").Return(false, boom).Once()
		_, err := New(ctx, client, "/x")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotGitRepo)
	})
}

func TestFunctionHistory_Mock(t *testing.T) {
	ctx := context.Background()
	hash := strings.Repeat("f", 40)

	client := new(contract.MockGitClient)
	client.On("IsInsideWorkTree", ctx, ".").Return(true, nil)
	client.On("LineLog", ctx, ".", ":Run:core/core.go").Return([]byte("commit "+hash+"\n"), nil).Once()
	client.On("LineLog", ctx, ".", ":Bad:bad.go").Return([]byte{0xff, 0xfe}, nil).Once()
	client.On("LineLog", ctx, ".", ":Gone:gone.go").Return(nil, errors.New("exec: not found")).Once()
	client.On("LineLog", ctx, ".", ":(*x) Do:x.go").Return([]byte{}, nil).Once()

	i, err := New(ctx, client, ".")
	require.NoError(t, err)

	got, err := i.FunctionHistory(ctx, "core/core.go", "Run")
	require.NoError(t, err)
	assert.Equal(t, []string{hash}, got)

	_, err = i.FunctionHistory(ctx, "bad.go", "Bad")
	assert.ErrorIs(t, err, ErrUTF8)

	_, err = i.FunctionHistory(ctx, "gone.go", "Gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec: not found")

	got, err = i.FunctionHistory(ctx, "x.go", "(*x) Do")
	require.NoError(t, err)
	assert.Empty(t, got)

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "LineLog", 4)
	client.AssertCalled(t, "LineLog", mock.Anything, ".", ":Run:core/core.go")
}

func TestFunctionHistory_Git(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.Commit(t, repo, "pkg/a.go", "package pkg\n\nfunc A() int {\n\treturn 1\n}\n\nfunc B() {}\n", "first")
	testutil.Commit(t, repo, "pkg/a.go", "package pkg\n\nfunc A() int {\n\treturn 2\n}\n\nfunc B() {}\n", "second")
	testutil.Commit(t, repo, "pkg/a.go", "package pkg\n\nfunc A() int {\n\treturn 3\n}\n\nfunc B() {}\n", "third")

	ctx := context.Background()
	i, err := New(ctx, contract.NewLocalGitClient(), repo)
	require.NoError(t, err)

	a, err := i.FunctionHistory(ctx, "pkg/a.go", "A")
	require.NoError(t, err)
	assert.Len(t, a, 3)

	b, err := i.FunctionHistory(ctx, "pkg/a.go", "B")
	require.NoError(t, err)
	assert.Len(t, b, 1)

	missing, err := i.FunctionHistory(ctx, "pkg/a.go", "Missing")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestNew_Git(t *testing.T) {
	testutil.SkipIfGitNotAvailable(t)
	ctx := context.Background()
	_, err := New(ctx, contract.NewLocalGitClient(), t.TempDir())
	assert.ErrorIs(t, err, ErrNotGitRepo)
}
