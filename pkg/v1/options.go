package v1

import "github.com/sirupsen/logrus"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	repoPath string
	logger   *logrus.Logger
}

// WithRepoPath points the client at a repository instead of the one
// containing the working directory.
func WithRepoPath(path string) Option {
	return func(c *clientConfig) {
		c.repoPath = path
	}
}

// WithLogger sets the logger. Without it each call logs as configured in the
// repository's carve.yaml.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
