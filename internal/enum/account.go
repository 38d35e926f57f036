package enum

type AccountStatus string

const (
	AccountStatusConnected    AccountStatus = "connected"
	AccountStatusError        AccountStatus = "error"
	AccountStatusDisconnected AccountStatus = "disconnected"
)

func (t AccountStatus) String() string {
	return string(t)
}

type AccountSecurity string

const (
	AccountSecurityNone     AccountSecurity = "none"
	AccountSecuritySSL      AccountSecurity = "ssl"
	AccountSecurityTLS      AccountSecurity = "tls"
	AccountSecurityStartTLS AccountSecurity = "startTLS"
)

func (t AccountSecurity) String() string {
	return string(t)
}
