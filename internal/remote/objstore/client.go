// SPDX-License-Identifier: MPL-2.0

// Package objstore reads datasets mirrored into an S3-compatible bucket,
// one object per member under the key <dataset>/<member>.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultRegion avoids a bucket location lookup on every new client.
const DefaultRegion = "us-east-1"

// Client implements dataset.Remote for s3 profiles. Profile.User and
// Profile.Password are the access key and secret key.
type Client struct {
	Region string

	mu      sync.Mutex
	clients map[profile.Name]*minio.Client
}

// ListMembers lists the objects directly below "<dataset>/".
func (c *Client) ListMembers(ctx context.Context, loc dataset.Location, p profile.Profile) ([]dataset.MemberName, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	mc, err := c.client(p)
	if err != nil {
		return nil, err
	}

	prefix := loc.String() + "/"
	var members []dataset.MemberName
	for obj := range mc.ListObjects(ctx, p.Bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, classify(obj.Err, loc.String())
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		// Nested prefixes come back as "<name>/".
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		members = append(members, dataset.MemberName(name))
	}
	slices.Sort(members)
	return members, nil
}

// FetchContent downloads the object "<dataset>/<member>".
func (c *Client) FetchContent(ctx context.Context, loc dataset.Location, member dataset.MemberName, p profile.Profile) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if !member.Safe() {
		return nil, fmt.Errorf("invalid member name %q", member)
	}
	mc, err := c.client(p)
	if err != nil {
		return nil, err
	}

	key := loc.String() + "/" + member.String()
	obj, err := mc.GetObject(ctx, p.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err, key)
	}
	defer func() { _ = obj.Close() }() // Read-only object

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify(err, key)
	}
	return data, nil
}

func (c *Client) client(p profile.Profile) (*minio.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mc, ok := c.clients[p.Name]; ok {
		return mc, nil
	}

	region := c.Region
	if region == "" {
		region = DefaultRegion
	}
	mc, err := minio.New(endpoint(p), &minio.Options{
		Creds:        credentials.NewStaticV4(p.User, p.Password, ""),
		Secure:       p.Secure,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client for %s: %w", p.Name, err)
	}
	if c.clients == nil {
		c.clients = make(map[profile.Name]*minio.Client)
	}
	c.clients[p.Name] = mc
	return mc, nil
}

func endpoint(p profile.Profile) string {
	if p.Port == 0 {
		return p.Host
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func classify(err error, what string) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchKey", "NoSuchBucket":
			return fmt.Errorf("%s: %w", what, dataset.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
