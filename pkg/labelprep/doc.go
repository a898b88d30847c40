// Package labelprep normalizes free-form multi-label annotations into
// canonical label codes and splits labeled records into stratified
// train, validation and test sets.
//
// Quick start:
//
//	p, err := labelprep.New(labelprep.WithExclude(7))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	codes, _ := p.Normalize(`['Drugs', "weapon."]`)
//	fmt.Println(codes) // [4 5]
//
// A Preparer is safe for concurrent use. Create once, reuse.
package labelprep
