//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Mock runs the CLI against the embedded fixture corpus.
type Mock mg.Namespace

func bin() string { return filepath.Join(binDir, binName) }

// Search runs a semantic and a structured search from the fixtures.
func (Mock) Search() error {
	mg.Deps(Build)
	if err := sh.RunV(bin(), "--mock", "search", "bone density in microgravity"); err != nil {
		return err
	}
	return sh.RunV(bin(), "--mock", "search", "--species", "Mus musculus")
}

// Ask asks one fixture-backed question.
func (Mock) Ask() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "--mock", "ask", "How does cosmic radiation damage DNA?")
}

// Serve starts the HTTP API on fixtures.
func (Mock) Serve() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "--mock", "serve")
}
