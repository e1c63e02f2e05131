package ir

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Validate checks the invariants the route generator relies on. Any error
// returned here is a contract violation of the upstream builder.
func Validate(snapshot *IR) field.ErrorList {
	var allErrs field.ErrorList

	if snapshot.RateLimit != nil && snapshot.RateLimit.Domain == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("ratelimit", "domain"),
			"a configured rate-limit service needs a domain"))
	}

	groupsPath := field.NewPath("groups")

	for i := range snapshot.Groups {
		allErrs = append(allErrs, ValidateGroup(&snapshot.Groups[i], groupsPath.Index(i))...)
	}

	return allErrs
}

// ValidateGroup checks one group and its mappings. Groups of other kinds are
// not inspected.
func ValidateGroup(group *Group, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList

	if !group.IsHTTPMappingGroup() {
		return allErrs
	}

	for i, header := range group.Headers {
		if header.Name == "" {
			allErrs = append(allErrs, field.Required(fldPath.Child("headers").Index(i).Child("name"), ""))
		}
	}

	if group.HostRedirect != nil {
		allErrs = append(allErrs, validateHostRedirect(group.HostRedirect, fldPath.Child("host_redirect"))...)
	}

	if len(group.Mappings) == 0 && group.HostRedirect == nil {
		allErrs = append(allErrs, field.Required(fldPath.Child("mappings"),
			"a group without a host redirect needs at least one mapping"))
	}

	if group.SNI && group.TLSContext == nil {
		allErrs = append(allErrs, field.Required(fldPath.Child("tls_context"),
			"an SNI group needs a TLS context"))
	}

	for i := range group.Shadows {
		allErrs = append(allErrs, validateShadow(&group.Shadows[i], fldPath.Child("shadows").Index(i))...)
	}

	for i := range group.Mappings {
		allErrs = append(allErrs, validateMapping(group, &group.Mappings[i], fldPath.Child("mappings").Index(i))...)
	}

	return allErrs
}

func validateMapping(group *Group, mapping *Mapping, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList

	if mapping.Weight != nil {
		allErrs = append(allErrs, validateWeight(*mapping.Weight, fldPath.Child("weight"))...)
	}

	if mapping.HostRedirect != nil {
		allErrs = append(allErrs, validateHostRedirect(mapping.HostRedirect, fldPath.Child("host_redirect"))...)
	}

	// Forwarding fields are never consulted when a redirect applies.
	if group.RouteHostRedirect(mapping) != nil {
		return allErrs
	}

	if mapping.Cluster == nil {
		allErrs = append(allErrs, field.Required(fldPath.Child("cluster"), "a forward mapping needs a cluster"))
	} else if mapping.Cluster.Name == "" {
		allErrs = append(allErrs, field.Required(fldPath.Child("cluster", "name"), ""))
	}

	if mapping.TimeoutMS != nil && *mapping.TimeoutMS < 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("timeout_ms"), *mapping.TimeoutMS, "must not be negative"))
	}

	if mapping.IdleTimeoutMS != nil && *mapping.IdleTimeoutMS < 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("idle_timeout_ms"), *mapping.IdleTimeoutMS, "must not be negative"))
	}

	return allErrs
}

func validateShadow(shadow *Shadow, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList

	if shadow.Cluster == nil || shadow.Cluster.Name == "" {
		allErrs = append(allErrs, field.Required(fldPath.Child("cluster"), "a shadow needs a cluster"))
	}

	if shadow.Weight != nil {
		allErrs = append(allErrs, validateWeight(*shadow.Weight, fldPath.Child("weight"))...)
	}

	return allErrs
}

func validateHostRedirect(redirect *HostRedirect, fldPath *field.Path) field.ErrorList {
	if redirect.Service == "" {
		return field.ErrorList{field.Required(fldPath.Child("service"), "a host redirect needs a target host")}
	}

	return nil
}

func validateWeight(weight int, fldPath *field.Path) field.ErrorList {
	if weight < MinWeight || weight > MaxWeight {
		return field.ErrorList{field.Invalid(fldPath, weight,
			fmt.Sprintf("must be between %d and %d", MinWeight, MaxWeight))}
	}

	return nil
}
