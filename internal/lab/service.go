package lab

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Runtime abstracts the container engine the service provisions labs on.
type Runtime interface {
	// Create creates a container from image with internalPort exposed and
	// bound to hostPort on the host, and returns the container id.
	Create(ctx context.Context, image string, internalPort, hostPort int) (string, error)
	Start(ctx context.Context, containerID string) error
	// BoundPort inspects the container and returns the host port bound to
	// internalPort, or 0 if no binding has appeared yet.
	BoundPort(ctx context.Context, containerID string, internalPort int) (int, error)
	Stop(ctx context.Context, containerID string) error
	Remove(ctx context.Context, containerID string) error
}

// Settings are the fixed provisioning parameters for every lab.
type Settings struct {
	Image        string
	InternalPort int
	Host         string
	ReadyTimeout time.Duration
	PollInterval time.Duration
}

// Service owns the full lab lifecycle: port reservation, container
// provisioning, registry bookkeeping and teardown.
type Service struct {
	runtime  Runtime
	ports    *Allocator
	registry *Registry
	settings Settings
}

// Created is the client-facing result of a successful provision.
type Created struct {
	LabID  string `json:"labId"`
	DevURL string `json:"devUrl"`
}

func NewService(runtime Runtime, ports *Allocator, registry *Registry, settings Settings) *Service {
	if settings.ReadyTimeout <= 0 {
		settings.ReadyTimeout = 3 * time.Second
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 150 * time.Millisecond
	}
	if settings.Host == "" {
		settings.Host = "localhost"
	}
	return &Service{
		runtime:  runtime,
		ports:    ports,
		registry: registry,
		settings: settings,
	}
}

// labIDLen mirrors docker's short container id.
const labIDLen = 12

// Create reserves a host port, starts a lab container bound to it, waits
// for the runtime to confirm the binding, and registers the session. The
// session is only registered once the container is confirmed running; on
// any failure the port is released and the container torn down.
func (s *Service) Create(ctx context.Context, userID, courseID, topicID string) (Created, error) {
	port, err := s.ports.Allocate()
	if err != nil {
		return Created{}, err
	}

	containerID, err := s.runtime.Create(ctx, s.settings.Image, s.settings.InternalPort, port)
	if err != nil {
		s.ports.Release(port)
		return Created{}, provisionErr("create container: %v", err)
	}

	if err := s.runtime.Start(ctx, containerID); err != nil {
		s.ports.Release(port)
		s.discard(containerID)
		return Created{}, provisionErr("start container: %v", err)
	}

	bound, err := s.waitForPort(ctx, containerID)
	if err != nil {
		s.ports.Release(port)
		s.discard(containerID)
		return Created{}, err
	}

	// The runtime is the source of truth for the binding. If it bound a
	// different port than the one reserved, track the actual one.
	if bound != port {
		s.ports.Release(port)
		s.ports.Reserve(bound)
	}

	labID := containerID
	if len(labID) > labIDLen {
		labID = labID[:labIDLen]
	}

	sess := newSession(labID, containerID, userID, courseID, topicID, bound, StarterFiles())
	s.registry.Add(sess)

	log.Printf("lab: started %s for user %s on port %d", labID, userID, bound)
	return Created{
		LabID:  labID,
		DevURL: fmt.Sprintf("http://%s:%d", s.settings.Host, bound),
	}, nil
}

// waitForPort polls the runtime until the container reports a host port
// binding, backing off between attempts, capped by the ready timeout.
func (s *Service) waitForPort(ctx context.Context, containerID string) (int, error) {
	deadline := time.Now().Add(s.settings.ReadyTimeout)
	interval := s.settings.PollInterval

	for {
		select {
		case <-ctx.Done():
			return 0, provisionErr("wait for port binding: %v", ctx.Err())
		case <-time.After(interval):
		}

		port, err := s.runtime.BoundPort(ctx, containerID, s.settings.InternalPort)
		if err != nil {
			return 0, provisionErr("inspect container: %v", err)
		}
		if port > 0 {
			return port, nil
		}

		if time.Now().After(deadline) {
			return 0, provisionErr("no host port bound for %d/tcp", s.settings.InternalPort)
		}

		interval *= 2
		if interval > time.Second {
			interval = time.Second
		}
	}
}

// Files returns the virtual file set of a lab.
func (s *Service) Files(labID string) (map[string]string, error) {
	sess, err := s.registry.Get(labID)
	if err != nil {
		return nil, err
	}
	return sess.Files(), nil
}

// WriteFile creates or overwrites one file in a lab's virtual file set.
func (s *Service) WriteFile(labID, path, content string) error {
	sess, err := s.registry.Get(labID)
	if err != nil {
		return err
	}
	return sess.WriteFile(path, content)
}

// Teardown stops and removes a lab's container, releases its port and
// drops the registry entry.
func (s *Service) Teardown(ctx context.Context, labID string) error {
	sess, err := s.registry.Remove(labID)
	if err != nil {
		return err
	}

	s.ports.Release(sess.HostPort)

	if err := s.runtime.Stop(ctx, sess.ContainerID); err != nil {
		log.Printf("lab: stop container %s: %v", sess.ContainerID, err)
	}
	if err := s.runtime.Remove(ctx, sess.ContainerID); err != nil {
		log.Printf("lab: remove container %s: %v", sess.ContainerID, err)
		return provisionErr("remove container: %v", err)
	}

	log.Printf("lab: tore down %s, released port %d", labID, sess.HostPort)
	return nil
}

// discard force-removes a container that never became a session.
func (s *Service) discard(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.runtime.Remove(ctx, containerID); err != nil {
		log.Printf("lab: discard container %s: %v", containerID, err)
	}
}
