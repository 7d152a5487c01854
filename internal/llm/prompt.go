package llm

import (
	_ "embed"
)

// SystemProtocol is the fixed instruction block sent ahead of every image.
// Its wording is part of the contract with the remote model and must not be edited.
//
//go:embed prompt/system_protocol.md
var SystemProtocol string

// Instruction accompanies the image in the user turn.
const Instruction = "Just recognize the text in the image, do not provide any explanation."
