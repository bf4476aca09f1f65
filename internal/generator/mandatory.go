package generator

import (
	"regexp"
	"sort"
	"strings"
)

var (
	mandatoryRowPattern = regexp.MustCompile(`\s*([\w]+)\s+FEATURES\s+\((.*)\)\s+REQUIREMENTS\s+\((.*)\)`)
	quotedTokenPattern  = regexp.MustCompile(`[^"\s]\S*|".+?"`)
)

// splitWithQuotation tokenizes on whitespace while keeping quoted
// phrases together, and strips the quotes.
func splitWithQuotation(line string) []string {
	var out []string
	for _, tok := range quotedTokenPattern.FindAllString(line, -1) {
		out = append(out, strings.Trim(tok, `"`))
	}
	return out
}

type mandatoryRow struct {
	structType   string
	features     string
	requirements []string
}

func requirementCondition(req string, allowMember bool) string {
	switch {
	case strings.HasPrefix(req, "ApiVersion"):
		return "context.contextSupports(vk::" + req + ")"
	case allowMember && strings.Contains(req, "."):
		// a struct member reference passes through verbatim
		return req
	default:
		return `isExtensionSupported(deviceExtensions, RequiredExtension("` + req + `"))`
	}
}

func (g *Generator) genMandatoryFeatures() ([]string, error) {
	src, err := g.src.MandatoryFeatures()
	if err != nil {
		return nil, err
	}

	var rows []mandatoryRow
	instanceNames := make(map[string][]string)
	for _, m := range mandatoryRowPattern.FindAllStringSubmatch(src, -1) {
		reqs := splitWithQuotation(m[3])
		rows = append(rows, mandatoryRow{
			structType:   m[1],
			features:     strings.TrimSpace(m[2]),
			requirements: reqs,
		})
		if m[1] == "VkPhysicalDeviceFeatures" {
			continue
		}
		if _, ok := instanceNames[m[1]]; !ok {
			instanceNames[m[1]] = []string{strings.ToLower(m[1][2:3]) + m[1][3:]}
		}
		if len(reqs) > 0 && reqs[0] != "" {
			v := instanceNames[m[1]]
			if !contains(v[1:], reqs[0]) {
				instanceNames[m[1]] = append(v, reqs[0])
			}
		}
	}

	lines := []string{
		"bool checkMandatoryFeatures(const vkt::Context& context)\n{",
		"\tif (!context.isInstanceFunctionalitySupported(\"VK_KHR_get_physical_device_properties2\"))",
		"\t\tTCU_THROW(NotSupportedError, \"Extension VK_KHR_get_physical_device_properties2 is not present\");",
		"",
		"\tVkPhysicalDevice\t\t\t\t\tphysicalDevice\t\t= context.getPhysicalDevice();",
		"\tconst InstanceInterface&\t\t\tvki\t\t\t\t\t= context.getInstanceInterface();",
		"\tconst vector<VkExtensionProperties>\tdeviceExtensions\t= enumerateDeviceExtensionProperties(vki, physicalDevice, DE_NULL);",
		"",
		"\ttcu::TestLog& log = context.getTestContext().getLog();",
		"\tvk::VkPhysicalDeviceFeatures2 coreFeatures;",
		"\tdeMemset(&coreFeatures, 0, sizeof(coreFeatures));",
		"\tcoreFeatures.sType = VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_FEATURES_2;",
		"\tvoid** nextPtr = &coreFeatures.pNext;",
		"",
	}

	structTypes := make([]string, 0, len(instanceNames))
	for k := range instanceNames {
		structTypes = append(structTypes, k)
	}
	sort.Strings(structTypes)
	for _, k := range structTypes {
		v := instanceNames[k]
		lines = append(lines,
			"\tvk::"+k+" "+v[0]+";",
			"\tdeMemset(&"+v[0]+", 0, sizeof("+v[0]+"));",
			"")
		if reqs := v[1:]; len(reqs) > 0 {
			conds := make([]string, len(reqs))
			for i, req := range reqs {
				conds[i] = requirementCondition(req, false)
			}
			lines = append(lines, "\tif ( "+strings.Join(conds, " || ")+" )")
		}
		lines = append(lines,
			"\t{",
			"\t\t"+v[0]+".sType = getStructureType<"+k+">();",
			"\t\t*nextPtr = &"+v[0]+";",
			"\t\tnextPtr  = &"+v[0]+".pNext;",
			"\t}",
			"")
	}
	lines = append(lines,
		"\tcontext.getInstanceInterface().getPhysicalDeviceFeatures2(context.getPhysicalDevice(), &coreFeatures);",
		"\tbool result = true;",
		"")

	for _, row := range rows {
		structName := "coreFeatures.features"
		if row.structType != "VkPhysicalDeviceFeatures" {
			structName = instanceNames[row.structType][0]
		}
		if len(row.requirements) > 0 {
			conds := make([]string, len(row.requirements))
			for i, req := range row.requirements {
				conds[i] = requirementCondition(req, true)
			}
			lines = append(lines, "\tif ( "+strings.Join(conds, " && ")+" )")
		}
		lines = append(lines, "\t{")
		features := strings.Split(row.features, " ")
		if len(features) == 1 {
			lines = append(lines, "\t\tif ( "+structName+"."+row.features+" == VK_FALSE )")
		} else {
			checks := make([]string, len(features))
			for i, feature := range features {
				checks[i] = "( " + structName + "." + feature + " == VK_FALSE )"
			}
			lines = append(lines, "\t\tif ( "+strings.Join(checks, " && ")+" )")
		}
		featureSet := strings.ReplaceAll(row.features, " ", " or ")
		lines = append(lines,
			"\t\t{",
			"\t\t\tlog << tcu::TestLog::Message << \"Mandatory feature "+featureSet+" not supported\" << tcu::TestLog::EndMessage;",
			"\t\t\tresult = false;",
			"\t\t}",
			"\t}",
			"")
	}
	lines = append(lines, "\treturn result;", "}\n")
	return lines, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
