package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationLogKeepsPresetID(t *testing.T) {
	id := uuid.New()
	entry := NotificationLog{ID: id}
	require.NoError(t, entry.BeforeCreate(nil))
	assert.Equal(t, id, entry.ID)

	var fresh NotificationLog
	require.NoError(t, fresh.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, fresh.ID)
}
