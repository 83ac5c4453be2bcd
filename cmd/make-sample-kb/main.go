package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"lexguard-backend/models"
)

// sampleKnowledgeBase returns a small constitutional-law knowledge base with
// annotated authorities, suitable for exercising the full analysis pipeline.
func sampleKnowledgeBase() *models.KnowledgeBase {
	return &models.KnowledgeBase{
		Name: "constitutional-law-sample",
		Taxonomy: []models.TaxonomyNode{
			{ID: "law", Title: "Law"},
			{ID: "crim", Title: "Criminal Procedure", ParentID: "law"},
			{ID: "search", Title: "Search and Seizure", ParentID: "crim"},
			{ID: "speech", Title: "Freedom of Speech", ParentID: "law"},
		},
		Items: []models.KnowledgeItem{
			{
				ID:       "katz",
				Kind:     models.ItemKindCase,
				Name:     "Katz v. United States",
				Citation: "389 U.S. 347",
				Facts:    "Federal agents attached a listening device to the outside of a public telephone booth and recorded the defendant's calls.",
				Question: "Does electronic eavesdropping on a public telephone booth violate the Fourth Amendment?",
				Holding:  "The Fourth Amendment protects people, not places; the warrantless wiretap was unconstitutional.",
				RuleOfLaw: "Evidence obtained in violation of a reasonable expectation of privacy " +
					"must be excluded from trial.",
				Notes: "TEST: The reasonable expectation of privacy test governs whether a search occurred.\n\n" +
					"NOTE: Departs from the physical trespass doctrine of earlier wiretap cases.",
				ClassificationPath: []string{"law", "crim", "search"},
			},
			{
				ID:        "terry",
				Kind:      models.ItemKindCase,
				Name:      "Terry v. Ohio",
				Citation:  "392 U.S. 1",
				Facts:     "An officer observed two men repeatedly pacing in front of a store window and patted them down for weapons.",
				Question:  "May an officer stop and frisk a suspect without probable cause for arrest?",
				Holding:   "A limited protective frisk based on reasonable suspicion does not violate the Fourth Amendment.",
				RuleOfLaw: "An officer may conduct a brief investigative stop and a protective frisk when specific articulable facts support reasonable suspicion.",
				Notes: "ELEMENT 1. Reasonable suspicion that criminal activity is afoot.\n\n" +
					"ELEMENT 2. Reasonable belief that the suspect is armed and presently dangerous.",
				ClassificationPath: []string{"law", "crim", "search"},
			},
			{
				ID:        "brandenburg",
				Kind:      models.ItemKindCase,
				Name:      "Brandenburg v. Ohio",
				Citation:  "395 U.S. 444",
				Facts:     "A Klan leader was convicted under a criminal syndicalism statute for a filmed rally speech.",
				Question:  "May a state punish advocacy of unlawful conduct?",
				Holding:   "Advocacy may be punished only where it is directed to inciting imminent lawless action and is likely to produce such action.",
				RuleOfLaw: "Speech advocating unlawful conduct is protected unless it is directed to and likely to incite imminent lawless action.",
				Notes: "TEST: Speech loses protection only when directed to inciting imminent lawless action and likely to produce it.\n\n" +
					"BRANCH A. Abstract advocacy of doctrine remains protected speech.\n\n" +
					"BRANCH B. Incitement to imminent lawless action may be proscribed.",
				ClassificationPath: []string{"law", "speech"},
			},
			{
				ID:                 "fourth-amendment",
				Kind:               models.ItemKindStatute,
				Name:               "Fourth Amendment",
				Citation:           "U.S. Const. amend. IV",
				RuleOfLaw:          "The right of the people to be secure against unreasonable searches and seizures shall not be violated.",
				ClassificationPath: []string{"law", "crim"},
			},
		},
	}
}

func main() {
	out, err := json.MarshalIndent(sampleKnowledgeBase(), "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode knowledge base: %v", err)
	}
	out = append(out, '\n')

	if len(os.Args) > 1 {
		path := os.Args[1]
		if err := os.WriteFile(path, out, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("✅ Sample knowledge base written to %s\n", path)
		return
	}

	os.Stdout.Write(out)
}
