package cfg

type Cfg struct {
	// Server configuration
	Port    string
	BaseUrl string
	DBPath  string

	// Research service configuration
	ResearchAPIURL string
	ResearchAPIKey string
	WebhookSecret  string
	RedditToolName string
	RedditToolURL  string

	// Authentication configuration
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthUserInfoURL  string
	SessionSecret     string

	// Administration
	Admins     []string
	AdminsFile string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// IsAdmin reports whether the given username is on the admin allow-list.
func (c *Cfg) IsAdmin(username string) bool {
	if username == "" {
		return false
	}
	for _, admin := range c.Admins {
		if admin == username {
			return true
		}
	}
	return false
}
