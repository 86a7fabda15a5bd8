package espalier_test

import (
	"fmt"
	"log"

	"github.com/aretw0/espalier"
)

// ExampleNew demonstrates compiling a workflow from an in-memory definition.
// This is useful for testing, embedded scenarios, or when you don't want to
// rely on the file system.
func ExampleNew() {
	// 1. Define the workflow in the flowchart dialect.
	source := `flowchart TD
    intake["Front Desk<br/>Intake"]
    solver["Research Desk<br/>Solver"]
    closed["Case Closed"]
    intake --> |"assigns"| solver
    solver --> closed
`

	// 2. Initialize the engine with the inline source.
	// Note: we leave the path empty ("") because we are providing the source.
	eng, err := espalier.New("", espalier.WithSource(source))
	if err != nil {
		log.Fatal(err)
	}

	// 3. Walk the workflow from its entry point.
	fmt.Println("entry:", eng.Graph().EntryPoints())
	current := "intake"
	for {
		next := eng.NextAgents(current)
		if len(next) == 0 {
			break
		}
		fmt.Printf("%s -> %s via %q\n", current, next[0].Target, next[0].Label)
		current = next[0].Target
	}

	// Output:
	// entry: [intake]
	// intake -> solver via "assigns"
	// solver -> closed via "solver_to_closed"
}
