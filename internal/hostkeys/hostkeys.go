// Package hostkeys checks that a target is pinned in a known_hosts file.
package hostkeys

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ErrUnknownHost is returned when a known_hosts file has no key for a host.
var ErrUnknownHost = errors.New("host not present in known_hosts")

// Result describes the entries found for one host.
type Result struct {
	// Path is the known_hosts file that was read.
	Path string `json:"path"`
	// Host is the normalized host[:port] that was looked up.
	Host string `json:"host"`
	// KeyTypes lists the pinned key algorithms, sorted.
	KeyTypes []string `json:"key_types"`
}

// Check reports which host keys path pins for address:port. It returns
// ErrUnknownHost when the file parses but holds no matching entry.
func Check(path, address string, port int) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("known_hosts %s: %w", path, err)
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("known_hosts %s: %w", path, err)
	}

	hostport := net.JoinHostPort(address, strconv.Itoa(port))
	res := &Result{Path: path, Host: knownhosts.Normalize(hostport)}

	probe, err := probeKey()
	if err != nil {
		return nil, err
	}

	remote := &net.TCPAddr{IP: net.ParseIP(address), Port: port}
	if remote.IP == nil {
		remote.IP = net.IPv4zero
	}

	// A throwaway key never matches, so the callback always reports which
	// keys it expected instead.
	err = callback(hostport, remote, probe)

	var keyErr *knownhosts.KeyError
	switch {
	case err == nil:
		return nil, fmt.Errorf("known_hosts %s: unexpected match for probe key", path)
	case errors.As(err, &keyErr):
		if len(keyErr.Want) == 0 {
			return res, fmt.Errorf("%w: %s in %s", ErrUnknownHost, res.Host, path)
		}
		for _, k := range keyErr.Want {
			res.KeyTypes = append(res.KeyTypes, k.Key.Type())
		}
		sort.Strings(res.KeyTypes)
		return res, nil
	default:
		return nil, fmt.Errorf("known_hosts %s: %w", path, err)
	}
}

func probeKey() (ssh.PublicKey, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate probe key: %w", err)
	}
	return ssh.NewPublicKey(pub)
}
