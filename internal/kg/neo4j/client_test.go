package neo4j

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdgraph/backend/internal/kg/builder"
)

func TestTermParams(t *testing.T) {
	params := termParams([]builder.Node{{ID: "react", Label: "React", Group: 1, Size: 4}})

	assert.Equal(t, []map[string]interface{}{
		{"id": "react", "label": "React", "group": 1, "size": 4},
	}, params)
}

func TestLinkParamsKeyIsOrderIndependent(t *testing.T) {
	params := linkParams([]builder.Link{
		{Source: "react", Target: "hooks", Value: 2, Type: "uses"},
		{Source: "hooks", Target: "react", Value: 1, Type: "used-in"},
	})

	assert.Equal(t, "hooks|react", params[0]["key"])
	assert.Equal(t, params[0]["key"], params[1]["key"])
	assert.Equal(t, "uses", params[0]["type"])
	assert.Equal(t, 2, params[0]["value"])
}

func TestExportEmptyGraphSkipsDriver(t *testing.T) {
	c := &Client{}

	result, err := c.Export(context.Background(), builder.EmptyGraph())
	assert.NoError(t, err)
	assert.Equal(t, &ExportResult{}, result)
}

func TestNewClientRejectsBadURI(t *testing.T) {
	_, err := NewClient("not-a-scheme://localhost", "neo4j", "secret", "")
	assert.Error(t, err)
}
