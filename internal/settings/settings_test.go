package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "personal", Personal{}.Key())
	assert.Equal(t, "wifi", Wifi{}.Key())
	assert.Equal(t, "rss", Rss{}.Key())
	assert.Equal(t, "stock", Stock{}.Key())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"personal ok", Personal{Name: "A", Location: "Kaiserslautern"}, false},
		{"personal no location", Personal{Name: "A"}, true},
		{"wifi ok", Wifi{SSID: "home", Pass: "supersecret"}, false},
		{"wifi open network", Wifi{SSID: "cafe"}, false},
		{"wifi no ssid", Wifi{Pass: "supersecret"}, true},
		{"wifi short pass", Wifi{SSID: "home", Pass: "short"}, true},
		{"rss ok", Rss{URL: "https://www.tagesschau.de/newsticker.rdf"}, false},
		{"rss bad scheme", Rss{URL: "ftp://example.com/feed"}, true},
		{"rss no host", Rss{URL: "https://"}, true},
		{"stock ok", Stock{Symbol: "IBM"}, false},
		{"stock dotted", Stock{Symbol: "BRK.B"}, false},
		{"stock empty", Stock{Symbol: " "}, true},
		{"stock injection", Stock{Symbol: "IBM&apikey=x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
