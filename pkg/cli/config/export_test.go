package config

// NewEngineForTest builds an Engine pointing at the given config file
func NewEngineForTest(path string) *Engine {
	return &Engine{configPath: path}
}
