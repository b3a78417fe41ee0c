package mcp

import "github.com/mark3labs/mcp-go/mcp"

// translateTool defines the translate MCP tool.
var translateTool = mcp.NewTool("translate",
	mcp.WithDescription("Translate text through the layered pipeline: personal memory, document context, network, offline fallback."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to translate"),
	),
	mcp.WithString("target_lang",
		mcp.Required(),
		mcp.Description("Target language code, e.g. zh, es, en"),
	),
	mcp.WithString("source_lang",
		mcp.Description("Source language code; omit or use 'auto' to detect"),
	),
	mcp.WithString("context_id",
		mcp.Description("Document context id for consistency adjustments"),
	),
	mcp.WithNumber("sentence_index",
		mcp.Description("Sentence position within the document context"),
	),
)

// memoryLookupTool defines the memory_lookup MCP tool.
var memoryLookupTool = mcp.NewTool("memory_lookup",
	mcp.WithDescription("Look up ranked translation memory candidates for a text without calling the network."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Source text to look up"),
	),
	mcp.WithString("source_lang",
		mcp.Required(),
		mcp.Description("Source language code"),
	),
	mcp.WithString("target_lang",
		mcp.Required(),
		mcp.Description("Target language code"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of candidates to return (default 5)"),
	),
)

// memoryRememberTool defines the memory_remember MCP tool.
var memoryRememberTool = mcp.NewTool("memory_remember",
	mcp.WithDescription("Store a translation pair in the personal memory. Repeats of the same pair reinforce it."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Source text"),
	),
	mcp.WithString("translation",
		mcp.Required(),
		mcp.Description("Translated text"),
	),
	mcp.WithString("source_lang",
		mcp.Required(),
		mcp.Description("Source language code"),
	),
	mcp.WithString("target_lang",
		mcp.Required(),
		mcp.Description("Target language code"),
	),
	mcp.WithString("domain",
		mcp.Description("Subject domain tag, e.g. tech, business"),
	),
)

// memoryFeedbackTool defines the memory_feedback MCP tool.
var memoryFeedbackTool = mcp.NewTool("memory_feedback",
	mcp.WithDescription("Rate a memory entry 1-5 and optionally supply a corrected translation."),
	mcp.WithString("entry_id",
		mcp.Required(),
		mcp.Description("Memory entry id, as returned by memory_lookup or memory_remember"),
	),
	mcp.WithNumber("rating",
		mcp.Required(),
		mcp.Description("Rating from 1 (wrong) to 5 (perfect)"),
	),
	mcp.WithString("correction",
		mcp.Description("Corrected translation, if the stored one is wrong"),
	),
)

// detectLanguageTool defines the detect_language MCP tool.
var detectLanguageTool = mcp.NewTool("detect_language",
	mcp.WithDescription("Detect the language of a text by character and stopword density."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to analyze"),
	),
)
