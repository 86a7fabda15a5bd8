package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/espalier"
)

// Sample workflows covering the grammar: labeled handoffs, review loops,
// auto-labeled edges and comment lines. The incident flow also carries noise
// lines for strict-mode demos.
var flows = []struct {
	name   string
	source string
}{
	{
		name: "escalation.mmd",
		source: `flowchart TD
    %% support escalation flow
    triage["Front Desk<br/>Triage"]
    expert["Escalation Desk<br/>Expert"]
    peer["Peer Review"]
    done["Resolution"]
    triage --> |"needs review"| expert
    expert <--> |"consults"| peer
    expert --> done
`,
	},
	{
		name: "editorial.mmd",
		source: `flowchart TD
    %% drafting loop between writer and editor
    pitch["Pitch Desk"]
    writer["Writing Desk<br/>Writer"]
    editor["Editing Desk<br/>Editor"]
    publish["Publication"]
    pitch --> |"accepted"| writer
    writer <--> |"revises"| editor
    editor --> |"approves"| publish
`,
	},
	{
		name: "incident.mmd",
		source: `flowchart TD
    %% incident response with a deliberately messy tail
    pager["On-Call<br/>Responder"]
    commander["Incident Command"]
    scribe["Scribe"]
    sme["Subject Expert"]
    postmortem["Postmortem"]
    pager --> |"escalates"| commander
    commander --> scribe
    commander <--> |"coordinates"| sme
    scribe --> postmortem
    this line matches no rule and is skipped
`,
	},
}

func main() {
	targetDir := "examples/flows"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating sample workflows in: %s\n", targetDir)

	for _, f := range flows {
		check(os.WriteFile(filepath.Join(targetDir, f.name), []byte(f.source), 0644))

		// Compile what we just wrote so the samples always parse.
		g, err := espalier.Parse(f.source)
		check(err)
		fmt.Printf("  %-16s %d agents, %d routes\n", f.name, len(g.AgentIDs()), g.RouteCount())
	}

	fmt.Println("Done.")
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
