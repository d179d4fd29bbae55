package lab

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// DockerRuntime provisions lab containers through the docker engine API.
type DockerRuntime struct {
	cli *client.Client
}

// NewDockerRuntime connects to the engine configured by the standard DOCKER_*
// environment and verifies it is reachable. An unreachable engine surfaces as
// ErrRuntimeUnavailable so callers can keep serving everything else.
func NewDockerRuntime(ctx context.Context) (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}
	return &DockerRuntime{cli: cli}, nil
}

func (d *DockerRuntime) Create(ctx context.Context, image string, internalPort, hostPort int) (string, error) {
	port, err := nat.NewPort("tcp", strconv.Itoa(internalPort))
	if err != nil {
		return "", err
	}

	hostBinding := ""
	if hostPort > 0 {
		hostBinding = strconv.Itoa(hostPort)
	}

	resp, err := d.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        image,
			ExposedPorts: nat.PortSet{port: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				port: []nat.PortBinding{{HostPort: hostBinding}},
			},
		},
		nil, nil, "")
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (d *DockerRuntime) Start(ctx context.Context, containerID string) error {
	return d.cli.ContainerStart(ctx, containerID, container.StartOptions{})
}

func (d *DockerRuntime) BoundPort(ctx context.Context, containerID string, internalPort int) (int, error) {
	info, err := d.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return 0, err
	}
	if info.NetworkSettings == nil {
		return 0, nil
	}

	port, err := nat.NewPort("tcp", strconv.Itoa(internalPort))
	if err != nil {
		return 0, err
	}

	bindings := info.NetworkSettings.Ports[port]
	if len(bindings) == 0 || bindings[0].HostPort == "" {
		return 0, nil
	}

	bound, err := strconv.Atoi(bindings[0].HostPort)
	if err != nil {
		return 0, fmt.Errorf("unparseable host port %q: %w", bindings[0].HostPort, err)
	}
	return bound, nil
}

func (d *DockerRuntime) Stop(ctx context.Context, containerID string) error {
	return d.cli.ContainerStop(ctx, containerID, container.StopOptions{})
}

func (d *DockerRuntime) Remove(ctx context.Context, containerID string) error {
	return d.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
}

func (d *DockerRuntime) Close() error {
	return d.cli.Close()
}
