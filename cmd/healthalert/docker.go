package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const composeServiceLabel = "com.docker.compose.service"

// Container is the subset of the Docker Engine list response the
// health check cares about.
type Container struct {
	ID     string   `json:"Id"`
	Names  []string `json:"Names"`
	State  string   `json:"State"`
	Status string   `json:"Status"`
	Labels map[string]string
}

func (c Container) Service() string {
	return c.Labels[composeServiceLabel]
}

func (c Container) Name() string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	return c.ID
}

// DockerClient talks to the Docker Engine API over its unix socket.
type DockerClient struct {
	http *http.Client
}

func NewDockerClient(socketPath string) *DockerClient {
	return &DockerClient{
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

// ListContainers returns all containers, stopped ones included.
func (d *DockerClient) ListContainers(ctx context.Context) ([]Container, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://docker/containers/json?all=1", nil)
	if err != nil {
		return nil, err
	}

	res, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query docker engine: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docker engine returned status %d", res.StatusCode)
	}

	var containers []Container
	if err := json.NewDecoder(res.Body).Decode(&containers); err != nil {
		return nil, fmt.Errorf("failed to decode container list: %w", err)
	}
	return containers, nil
}

// watched reports whether a container belongs to one of the compose
// services the watchdog monitors.
func watched(c Container, services []string) bool {
	label := c.Service()
	if label == "" {
		return false
	}
	for _, svc := range services {
		if strings.Contains(label, svc) {
			return true
		}
	}
	return false
}
