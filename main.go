package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/omega-summarizer/cmd"
	_ "github.com/tanpawarit/omega-summarizer/pkg/logger/autoload"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("omega-summarizer failed")
		os.Exit(1)
	}
}
