package service

// Service names accepted in configuration.
const (
	ServiceOpenAI     = "openai"
	ServiceSpeech     = "speech"
	ServiceTranslator = "translator"
)

// registry lists every scenario per service in its canonical execution order.
// An empty scenario list in configuration means "all of these, in this order".
var registry = map[string][]Scenario{
	ServiceOpenAI: {
		modelsList{},
		chatCompletion{},
	},
	ServiceSpeech: {
		voicesList{},
		textToSpeech{},
		batchTranscription{},
	},
	ServiceTranslator: {
		translate{},
	},
}

// Names returns the known service names in a stable order.
func Names() []string {
	return []string{ServiceOpenAI, ServiceSpeech, ServiceTranslator}
}

// Known reports whether the service name is registered.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Scenarios returns the ordered scenario list for a service.
func Scenarios(name string) []Scenario {
	return registry[name]
}

// Lookup finds a single scenario by service and scenario name.
func Lookup(serviceName, scenarioName string) (Scenario, bool) {
	for _, s := range registry[serviceName] {
		if s.Name() == scenarioName {
			return s, true
		}
	}
	return nil, false
}
