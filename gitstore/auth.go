package gitstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"

	"github.com/hairyhenderson/go-git/v5/plumbing/transport"
	githttp "github.com/hairyhenderson/go-git/v5/plumbing/transport/http"
	"github.com/hairyhenderson/go-git/v5/plumbing/transport/ssh"
	"github.com/hairyhenderson/go-gitstream/internal/env"
)

// Authenticator provides an AuthMethod for the URL of a remote repository. If
// the URL is not appropriate for the Authenticator, an error is returned.
type Authenticator interface {
	Authenticate(u *url.URL) (AuthMethod, error)
}

// AuthMethod is an HTTP or SSH authentication method, as understood by go-git.
// A nil AuthMethod means no authentication.
type AuthMethod = transport.AuthMethod

// AuthenticatorFunc adapts a function to an Authenticator.
type AuthenticatorFunc func(u *url.URL) (AuthMethod, error)

// Authenticate - implements Authenticator
func (a AuthenticatorFunc) Authenticate(u *url.URL) (AuthMethod, error) {
	return a(u)
}

func checkScheme(kind string, u *url.URL, schemes ...string) error {
	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Errorf("%s authentication not supported for scheme %q", kind, u.Scheme)
	}

	return nil
}

// AutoAuthenticator returns an Authenticator that uses the first of these
// that succeeds for the given URL:
//
//	BasicAuthenticator
//	TokenAuthenticator
//	PublicKeyAuthenticator
//	SSHAgentAuthenticator
//	NoopAuthenticator
func AutoAuthenticator() Authenticator {
	chain := []Authenticator{
		BasicAuthenticator("", ""),
		TokenAuthenticator(""),
		PublicKeyAuthenticator("", nil, ""),
		SSHAgentAuthenticator(""),
		NoopAuthenticator(),
	}

	return AuthenticatorFunc(func(u *url.URL) (AuthMethod, error) {
		for _, a := range chain {
			if method, err := a.Authenticate(u); err == nil {
				return method, nil
			}
		}

		return nil, fmt.Errorf("no authentication method available for %s", u.Redacted())
	})
}

// NoopAuthenticator performs no authentication. It can only be used with the
// 'git', 'file', 'http', and 'https' schemes.
func NoopAuthenticator() Authenticator {
	return AuthenticatorFunc(func(u *url.URL) (AuthMethod, error) {
		if err := checkScheme("no-op", u, "git", "file", "http", "https"); err != nil {
			return nil, err
		}

		return nil, nil
	})
}

// BasicAuthenticator provides HTTP Basic Authentication for 'http' and 'https'
// URLs. Credentials in the URL take precedence over username and password.
// When no password is available, GIT_HTTP_PASSWORD (or GIT_HTTP_PASSWORD_FILE)
// is consulted. With neither a username nor a password, no authentication is
// used.
func BasicAuthenticator(username, password string) Authenticator {
	return &basicAuthenticator{envfsys: os.DirFS("/"), username: username, password: password}
}

type basicAuthenticator struct {
	envfsys            fs.FS
	username, password string
}

func (a *basicAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("basic", u, "http", "https"); err != nil {
		return nil, err
	}

	username := u.User.Username()
	if username == "" {
		username = a.username
	}

	password, _ := u.User.Password()
	if password == "" {
		password = a.password
	}

	if password == "" {
		password = env.GetenvFS(a.envfsys, "GIT_HTTP_PASSWORD")
	}

	if username == "" && password == "" {
		return nil, nil
	}

	return &githttp.BasicAuth{Username: username, Password: password}, nil
}

// TokenAuthenticator provides HTTP bearer token authentication for 'http' and
// 'https' URLs. If token is empty, GIT_HTTP_TOKEN (or GIT_HTTP_TOKEN_FILE) is
// used.
//
// Most popular git hosts expect tokens through Basic Authentication instead;
// use BasicAuthenticator for those.
func TokenAuthenticator(token string) Authenticator {
	return &tokenAuthenticator{envfsys: os.DirFS("/"), token: token}
}

type tokenAuthenticator struct {
	envfsys fs.FS
	token   string
}

func (a *tokenAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("token", u, "http", "https"); err != nil {
		return nil, err
	}

	token := a.token
	if token == "" {
		token = env.GetenvFS(a.envfsys, "GIT_HTTP_TOKEN")
	}

	if token == "" {
		return nil, errors.New("token may not be empty for token authentication")
	}

	return &githttp.TokenAuth{Token: token}, nil
}

// PublicKeyAuthenticator provides SSH public key authentication for 'ssh'
// URLs. privKey is a PEM-encoded private key, encrypted with keyPass if
// keyPass is non-empty. If privKey is empty, GIT_SSH_KEY (or
// GIT_SSH_KEY_FILE) is used, optionally base64-encoded.
func PublicKeyAuthenticator(username string, privKey []byte, keyPass string) Authenticator {
	return &publicKeyAuthenticator{
		envfsys: os.DirFS("/"), username: username, privKey: privKey, keyPass: keyPass,
	}
}

type publicKeyAuthenticator struct {
	envfsys  fs.FS
	username string
	keyPass  string
	privKey  []byte
}

func (a *publicKeyAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("public key", u, "ssh"); err != nil {
		return nil, err
	}

	username := u.User.Username()
	if username == "" {
		username = a.username
	}

	k := a.privKey
	if len(k) == 0 {
		envKey := env.GetenvFS(a.envfsys, "GIT_SSH_KEY")

		var err error

		k, err = base64.StdEncoding.DecodeString(envKey)
		if err != nil {
			k = []byte(envKey)
		}
	}

	if len(k) == 0 {
		return nil, errors.New("private key may not be empty for public key authentication")
	}

	return ssh.NewPublicKeys(username, k, a.keyPass)
}

// SSHAgentAuthenticator authenticates 'ssh' URLs through the ssh-agent found
// at SSH_AUTH_SOCK. The URL's user takes precedence over username.
func SSHAgentAuthenticator(username string) Authenticator {
	return AuthenticatorFunc(func(u *url.URL) (AuthMethod, error) {
		if err := checkScheme("ssh-agent", u, "ssh"); err != nil {
			return nil, err
		}

		user := u.User.Username()
		if user == "" {
			user = username
		}

		return ssh.NewSSHAgentAuth(user)
	})
}
