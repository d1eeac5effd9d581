package browser

import (
	"time"

	"github.com/flakysalt/InkyPi/internal/ftpx"
)

// DisplaySettings is everything one render request needs: where to connect,
// which image to show and how to fit it. JSON keys match the plugin's
// options schema.
type DisplaySettings struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseTLS   bool   `json:"use_tls"`
	Passive  bool   `json:"passive"`
	Encoding string `json:"encoding"`

	InitialPath   string `json:"initial_path"`
	CurrentPath   string `json:"current_path"`
	RandomMode    bool   `json:"random_mode"`
	SelectedImage string `json:"selected_image"`

	VerticalHandling string `json:"verticalHandling"`
	PadImage         bool   `json:"padImage"`

	// Transport tuning, not part of the options schema.
	Timeout            time.Duration `json:"-"`
	InsecureSkipVerify bool          `json:"-"`
}

// DefaultSettings returns the plugin defaults. Unmarshal request bodies
// onto this value so absent keys keep their defaults.
func DefaultSettings() DisplaySettings {
	return DisplaySettings{
		Port:             21,
		Username:         "anonymous",
		Passive:          true,
		Encoding:         "latin-1",
		InitialPath:      "/",
		CurrentPath:      "/",
		VerticalHandling: "rotate",
	}
}

func (s DisplaySettings) connConfig() ftpx.Config {
	return ftpx.Config{
		Host:               s.Server,
		Port:               s.Port,
		Username:           s.Username,
		Password:           s.Password,
		UseTLS:             s.UseTLS,
		Passive:            s.Passive,
		Encoding:           s.Encoding,
		Timeout:            s.Timeout,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
}
