package git

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefName(t *testing.T) {
	require.Equal(t, "HEAD", RefName(""))
	require.Equal(t, "refs/heads/feature", RefName("feature"))
	require.Equal(t, "refs/heads/team/feature", RefName("team/feature"))
	require.Equal(t, "refs/heads/feature", RefName("refs/heads/feature"))
}

func TestSignatureEnv(t *testing.T) {
	require.Nil(t, Signature{}.Env())

	sig := Signature{
		Name:  "A U Thor",
		Email: "author@example.com",
		When:  time.Unix(1234567890, 0).In(time.FixedZone("", -5*60*60)),
	}
	require.Equal(t, []string{
		"GIT_AUTHOR_NAME=A U Thor",
		"GIT_AUTHOR_EMAIL=author@example.com",
		"GIT_AUTHOR_DATE=1234567890 -0500",
	}, sig.Env())
}

func TestCommitSubject(t *testing.T) {
	require.Equal(t, "subject", Commit{Message: "subject\n\nbody\n"}.Subject())
	require.Equal(t, "subject", Commit{Message: "\n\n  subject  \nmore"}.Subject())
	require.Equal(t, "", Commit{}.Subject())
	require.Equal(t, "0123456", Commit{Hash: "0123456789abcdef"}.ShortHash())
	require.Equal(t, "abc", ShortHash("abc"))
}
