package server

import (
	"testing"
)

func TestNewGRPCServer_RegistersHealth(t *testing.T) {
	s, hs := NewGRPCServer()
	defer s.Stop()
	if hs == nil {
		t.Fatal("health server is nil")
	}
	info := s.GetServiceInfo()
	if _, ok := info["grpc.health.v1.Health"]; !ok {
		t.Errorf("registered services = %v, want grpc.health.v1.Health", info)
	}
}
