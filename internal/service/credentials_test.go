package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository/memory"
)

func TestWithDefaultCredential(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCredentialRepository()
	require.NoError(t, repo.Put(ctx, "A", "session=own"))

	creds := WithDefaultCredential(repo, " session=shared ")

	c, err := creds.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "session=own", c)

	c, err = creds.Get(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "session=shared", c)
}

func TestWithDefaultCredential_EmptyFallbackIsNoop(t *testing.T) {
	repo := memory.NewCredentialRepository()

	assert.Same(t, repo, WithDefaultCredential(repo, "  "))
}
