package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates the node, graph, model and prompt observers
// into one callbacks.Handler. m may be nil to log without metrics.
func NewAllCallbacks(m *Metrics) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(m)).
		Prompt(newPromptHandler()).
		Lambda(newNodeHandler(m)).
		Graph(newGraphHandler(m)).
		Handler()
}
