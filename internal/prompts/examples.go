package prompts

// Example inputs substituted for missing fields when the example-input
// policy is enabled, so each endpoint can be demonstrated without data.
const (
	ExampleCaseType     = "Breach of contract"
	ExampleJurisdiction = "England and Wales"
	ExampleCaseSummary  = `The claimant, a software supplier, delivered a customised inventory system to the defendant retailer in March 2022. The defendant withheld the final payment of £120,000, alleging the system failed agreed performance benchmarks. The claimant argues the benchmarks were met during acceptance testing and that the defendant signed an acceptance certificate.`

	// Deliberately not in English: the timeline prompt must cope with any language.
	ExampleCaseFacts = `El 15 de enero de 2020 las partes firmaron el contrato de arrendamiento del local comercial.
El 25 de marzo de 2020 comenzó el confinamiento y el local tuvo que cerrar.
El 1 de abril de 2020 el arrendatario dejó de pagar la renta.
El 10 de septiembre de 2020 el arrendador presentó la demanda de desahucio.`

	ExampleArgumentType = "Defence"
	ExampleCoreArgument = `Our client was not negligent because the wet floor was clearly marked with warning signs and the claimant ignored them.`
)

// Or returns value unless it is empty and useExample is set, in which case it
// returns example.
func Or(value, example string, useExample bool) string {
	if value == "" && useExample {
		return example
	}
	return value
}
