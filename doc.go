// Package cardlingo translates character card text between natural
// languages while preserving everything that is not prose: template
// variables like {{user}} and {{char}}, inline and fenced code, markdown
// emphasis, and whitespace structure.
//
// The pipeline shields protected spans behind opaque markers, splits the
// remainder along markdown delimiter pairs, chunks plain text to the
// backend's size ceiling, and reassembles a result whose casing and
// punctuation spacing match the source.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/tavernkit/cardlingo"
//	    "github.com/tavernkit/cardlingo/backend"
//	    "github.com/tavernkit/cardlingo/cache"
//	)
//
//	func main() {
//	    b := backend.NewOpenAIBackend(backend.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    p, err := cardlingo.NewPipeline("pt", b,
//	        cardlingo.WithCache(cache.NewMemory(0)),
//	        cardlingo.WithCharacterName("Seraphina"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := p.TranslateField(context.Background(),
//	        "Hello {{user}}, meet **{{char}}**!")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out)
//	}
package cardlingo
