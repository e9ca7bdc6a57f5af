package domain

// Storage keys shared by the session manager and the request authorizer.
const (
	KeyAdminToken = "adminToken"
	KeyAdminData  = "adminData"
	KeyAdminEmail = "adminEmail" // legacy, removed on logout, never written
	KeyUserToken  = "token"
)

// SessionKeys are the keys removed by an explicit or automatic logout.
var SessionKeys = []string{KeyAdminToken, KeyAdminData, KeyAdminEmail}

// AllAuthKeys are the keys removed when the backend answers 401.
var AllAuthKeys = []string{KeyUserToken, KeyAdminToken, KeyAdminData, KeyAdminEmail}

type SessionState string

const (
	SessionStateRestoring     SessionState = "restoring"
	SessionStateAuthenticated SessionState = "authenticated"
	SessionStateAnonymous     SessionState = "anonymous"
)

// Principal is the cached admin profile. It keeps every field the backend
// returned so that it round-trips through the store unchanged.
type Principal map[string]any

// Name returns the display name, if the backend sent one.
func (p Principal) Name() string {
	return p.stringField("name")
}

// Email returns the contact email, if the backend sent one.
func (p Principal) Email() string {
	return p.stringField("email")
}

func (p Principal) stringField(key string) string {
	if p == nil {
		return ""
	}
	v, _ := p[key].(string)
	return v
}

// Session is a point-in-time snapshot of the admin session.
type Session struct {
	Token         string       `json:"-"`
	Principal     Principal    `json:"admin,omitempty"`
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	State         SessionState `json:"state"`
}
