// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"pine/internal/lsp"
)

const lsName = "pine" // Name identifier for the language server

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	pineHandler := lsp.NewPineHandler()

	handler = protocol.Handler{
		Initialize:                     pineHandler.Initialize,
		Initialized:                    pineHandler.Initialized,
		Shutdown:                       pineHandler.Shutdown,
		SetTrace:                       pineHandler.SetTrace,
		TextDocumentDidOpen:            pineHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           pineHandler.TextDocumentDidClose,
		TextDocumentDidChange:          pineHandler.TextDocumentDidChange,
		TextDocumentSemanticTokensFull: pineHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting Pine LSP server...")

	// The server speaks LSP over standard input/output, which is how
	// most editors launch language servers.
	err := s.RunStdio()
	if err != nil {
		log.Println("Error starting Pine LSP server:", err)
		os.Exit(1)
	}
}
