// Package snowball embeds the Snowball candidate-tuple builder in a Go program.
//
// A Client loads one run (parameters, seeds and the sentence corpus), builds
// or restores the vector space model and then turns tagged sentences or raw
// occurrences into candidate tuples.
//
//	client, err := snowball.New(ctx,
//	    snowball.WithFiles("parameters.cfg", "seeds_positive.txt", "sentences.txt"),
//	    snowball.WithNegativeSeeds("seeds_negative.txt"),
//	    snowball.WithFileCache(".snowball-cache"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	tuples, _ := client.Extract(ctx)
//	more, _ := client.Build(ctx, []snowball.Occurrence{{
//	    Ent1: "Google", Ent2: "Larry Page", Between: "was founded by",
//	}})
package snowball
