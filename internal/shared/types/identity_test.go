package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderGrantAcceptsBothShapes(t *testing.T) {
	var id Identity
	raw := `{"id":"7","username":"alice","role":"user","folders":["/shared",{"path":"/media/usb","name":"USB","isDisk":true}]}`

	require.NoError(t, json.Unmarshal([]byte(raw), &id))

	require.Len(t, id.Grants, 2)
	assert.Equal(t, FolderGrant{Path: "/shared"}, id.Grants[0])
	assert.Equal(t, "/media/usb", id.Grants[1].Path)
	assert.Equal(t, "USB", id.Grants[1].DisplayName)
	assert.True(t, id.Grants[1].IsVolumeRoot)
}

func TestFolderGrantRejectsGarbage(t *testing.T) {
	var g FolderGrant
	assert.Error(t, json.Unmarshal([]byte(`42`), &g))
}

func TestOperationStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusError.Terminal())
}
