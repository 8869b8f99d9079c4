package opml

import (
	"strings"
	"testing"

	"github.com/smckee/worldpulse/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	sources := []model.Source{
		{Name: "Daily Orbit", Country: "GB", Region: "Europe", URL: "https://www.dailyorbit.com/rss"},
		{Name: "Asia Daily", Country: "IN", Region: "Asia", URL: "https://www.asiadaily.net/rss"},
		{Name: "Orbit Pages", Country: "GB", Region: "Europe", URL: "https://www.dailyorbit.com/news", Kind: "html"},
	}

	data, err := Export("Test Sources", sources)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `text="Europe"`)
	assert.Contains(t, out, `text="Asia"`)
	assert.Contains(t, out, `xmlUrl="https://www.dailyorbit.com/rss"`)
	// HTML sources carry htmlUrl instead of xmlUrl.
	assert.Contains(t, out, `htmlUrl="https://www.dailyorbit.com/news"`)
	// Region groups appear in declaration order.
	assert.Less(t, strings.Index(out, `text="Europe"`), strings.Index(out, `text="Asia"`))
}
