package registry

import (
	consulapi "github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this process with a service catalog and looks up
// healthy peers.
type ServiceRegistry interface {
	// Register announces one service instance. id must be unique per instance.
	Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error

	Deregister(id string) error

	// Discover returns "host:port" for every passing instance of name.
	Discover(name string, tag string) ([]string, error)
}
