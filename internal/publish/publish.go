// Package publish uploads converted outputs to a remote host over SFTP.
// Uploads run through the same batch engine as conversions, so progress,
// failure isolation and ordering behave identically.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	xssh "golang.org/x/crypto/ssh"

	"github.com/imgx-dev/imgx/internal/batch"
)

// Target describes where outputs go.
type Target struct {
	Host       string
	Port       int
	User       string
	KeyPath    string
	KnownHosts string
	RemoteDir  string
	Timeout    time.Duration
	Retries    int
	Backoff    time.Duration
}

func (t Target) addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}

// Uploader pushes files to one Target.
type Uploader struct {
	target Target
	log    zerolog.Logger
}

func New(target Target, log zerolog.Logger) (*Uploader, error) {
	if target.Host == "" {
		return nil, errors.New("publish: host required")
	}
	if target.User == "" {
		return nil, errors.New("publish: user required")
	}
	if target.KeyPath == "" {
		return nil, errors.New("publish: key path required")
	}
	return &Uploader{target: target, log: log}, nil
}

// Push uploads every path, at most concurrency at a time, and returns the
// batch result: remote paths in input order, failed uploads in completion
// order. A failed upload never aborts the rest.
func (u *Uploader) Push(ctx context.Context, paths []string, concurrency int) (*batch.Result[string], error) {
	cli, err := u.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer cli.Close()
	sf, err := sftp.NewClient(cli)
	if err != nil {
		return nil, fmt.Errorf("sftp client: %w", err)
	}
	defer sf.Close()

	if u.target.RemoteDir != "" {
		if err := sf.MkdirAll(u.target.RemoteDir); err != nil {
			return nil, fmt.Errorf("mkdir remote: %w", err)
		}
	}

	op := func(ctx context.Context, item batch.Item) (string, error) {
		remote := path.Join(u.target.RemoteDir, filepath.Base(item.Path))
		if err := uploadFile(sf, item.Path, remote); err != nil {
			return "", err
		}
		return remote, nil
	}
	cfg := batch.Config[string]{
		Concurrency: concurrency,
		OnProgress: func(p batch.Progress[string]) {
			u.log.Debug().Str("file", p.Item.Path).Str("remote", p.Result).
				Int("completed", p.Completed).Int("total", p.Total).
				Dur("elapsed", p.Duration).Msg("uploaded")
		},
		OnError: func(f batch.Failure) {
			u.log.Warn().Str("file", f.Item.Path).Err(f.Err).Msg("upload failed")
		},
	}
	return batch.Run(ctx, batch.MakeItems(paths), op, cfg)
}

func uploadFile(sf *sftp.Client, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local: %w", err)
	}
	defer src.Close()
	dst, err := sf.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// dial connects with retries and linear backoff.
func (u *Uploader) dial(ctx context.Context) (*xssh.Client, error) {
	cfg, err := u.clientConfig()
	if err != nil {
		return nil, err
	}
	retries := u.target.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := u.target.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		cli, err := xssh.Dial("tcp", u.target.addr(), cfg)
		if err == nil {
			return cli, nil
		}
		lastErr = err
		if attempt < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff * time.Duration(attempt+1)):
			}
		}
	}
	return nil, fmt.Errorf("dial %s: %w", u.target.addr(), lastErr)
}

func (u *Uploader) clientConfig() (*xssh.ClientConfig, error) {
	signer, err := loadPrivateKeySigner(u.target.KeyPath)
	if err != nil {
		return nil, err
	}
	cb, err := knownHostsCallback(u.target.KnownHosts)
	if err != nil {
		return nil, err
	}
	timeout := u.target.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &xssh.ClientConfig{
		User:            u.target.User,
		Auth:            []xssh.AuthMethod{xssh.PublicKeys(signer)},
		HostKeyCallback: cb,
		Timeout:         timeout,
	}, nil
}
