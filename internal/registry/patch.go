package registry

// Known header irregularities, applied as a final deterministic step
// after generic alias resolution. Each patch is a no-op when its target
// is absent from the parsed registry, so reduced inputs still parse.
type patch struct {
	name  string
	apply func(api *API)
}

var irregularityPatches = []patch{
	{
		// The header declares the second argument of
		// vkDestroyAccelerationStructureNV as the KHR handle even
		// though the NV object is managed separately; deleters must
		// see the concrete NV type.
		name: "accel-structure-destroy-arg",
		apply: func(api *API) {
			for _, f := range api.Functions {
				if f.Name == "vkDestroyAccelerationStructureNV" && len(f.Arguments) > 1 {
					f.Arguments[1].Type[0] = "VkAccelerationStructureNV"
				}
			}
		},
	},
	{
		// VkAccelerationStructureKHR and VkAccelerationStructureNV are
		// structurally different objects despite the header's typedef;
		// break the alias link so both stay distinct downstream.
		name: "accel-structure-dealias",
		apply: func(api *API) {
			for _, h := range api.Handles {
				if h.Name == "VkAccelerationStructureKHR" {
					h.Alias = nil
				}
				if h.Name == "VkAccelerationStructureNV" {
					h.IsAlias = false
				}
			}
		},
	},
}

func applyPatches(api *API) error {
	for _, p := range irregularityPatches {
		p.apply(api)
	}
	return nil
}
