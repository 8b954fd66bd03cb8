package writerbackends

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"time"

	"stillreel/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var ErrNoHostKey = errors.New("sftp export needs hostKey or knownHosts to verify the server")

// sftpTarget is a validated SFTP destination.
type sftpTarget struct {
	addr       string
	remotePath string
	config     *ssh.ClientConfig
}

// parseSFTPTarget reads accessInfo: host, user, password or privateKey (base64
// or raw PEM), and hostKey (an authorized_keys line) or knownHosts (a file
// path). Optional: port (default 22), remoteDir, remotePath.
func parseSFTPTarget(accessInfo map[string]string) (sftpTarget, error) {
	host := accessInfo["host"]
	port := accessInfo["port"]
	if port == "" {
		port = "22"
	}
	user := accessInfo["user"]
	remotePath := accessInfo["remotePath"]
	if remotePath == "" && accessInfo["filename"] != "" {
		remotePath = path.Join(accessInfo["remoteDir"], accessInfo["folder"], accessInfo["filename"])
	}
	if host == "" || user == "" || remotePath == "" {
		return sftpTarget{}, fmt.Errorf("missing required accessInfo keys: host, user, remotePath or filename")
	}

	auth, err := sftpAuth(accessInfo)
	if err != nil {
		return sftpTarget{}, err
	}
	hostKeyCallback, err := sftpHostKeyCallback(accessInfo)
	if err != nil {
		return sftpTarget{}, err
	}

	return sftpTarget{
		addr:       net.JoinHostPort(host, port),
		remotePath: remotePath,
		config: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{auth},
			HostKeyCallback: hostKeyCallback,
			Timeout:         10 * time.Second,
		},
	}, nil
}

func sftpAuth(accessInfo map[string]string) (ssh.AuthMethod, error) {
	if privateKey := accessInfo["privateKey"]; privateKey != "" {
		keyBytes, err := base64.StdEncoding.DecodeString(privateKey)
		if err != nil {
			keyBytes = []byte(privateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return ssh.PublicKeys(signer), nil
	}
	if password := accessInfo["password"]; password != "" {
		return ssh.Password(password), nil
	}
	return nil, fmt.Errorf("no auth method provided; set password or privateKey in accessInfo")
}

func sftpHostKeyCallback(accessInfo map[string]string) (ssh.HostKeyCallback, error) {
	if line := accessInfo["hostKey"]; line != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("parse hostKey: %w", err)
		}
		return ssh.FixedHostKey(key), nil
	}
	if file := accessInfo["knownHosts"]; file != "" {
		cb, err := knownhosts.New(file)
		if err != nil {
			return nil, fmt.Errorf("load knownHosts %s: %w", file, err)
		}
		return cb, nil
	}
	return nil, ErrNoHostKey
}

// UploadToSFTPWithCreds copies the clip to a remote server whose host key is
// pinned by accessInfo. The remote name is remoteDir/folder/filename unless
// remotePath is given.
func UploadToSFTPWithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	target, err := parseSFTPTarget(accessInfo)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: target.config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", target.addr)
	if err != nil {
		return fmt.Errorf("dial tcp %s: %w", target.addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, target.addr, target.config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", target.addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("create sftp client: %w", err)
	}
	defer sftpClient.Close()

	dir := path.Dir(target.remotePath)
	if err := sftpClient.MkdirAll(dir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", dir, err)
	}

	f, err := sftpClient.Create(target.remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", target.remotePath, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("copy to remote file %s: %w", target.remotePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", target.remotePath, err)
	}

	logger.Infof("Uploaded '%s' to %s", target.remotePath, target.addr)
	return nil
}
