package csapi

// Catalog is the set of all dataset paths present in one source container,
// bound to that source's identifier.  It is plain value data: holding a
// Catalog does not hold the source open.
type Catalog struct {
	// Source identifies the container this catalog was read from,
	// normally its filesystem path.
	Source string

	PathCollection
}

// NewCatalog binds a path collection to the source it was read from.
func NewCatalog(source string, paths PathCollection) Catalog {
	return Catalog{Source: source, PathCollection: paths}
}

// FindAll filters the catalog by a query pattern, keeping the source binding.
//
// Errors:
//
//    - cistern-error-path-malformed -- when a pattern field does not compile as a regular expression.
func (c Catalog) FindAll(pattern DatasetPath) (Catalog, error) {
	sub, err := c.PathCollection.FindAll(pattern)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Source: c.Source, PathCollection: sub}, nil
}

// CollapseDates drops the D field of every path in the catalog,
// keeping the source binding.
func (c Catalog) CollapseDates() Catalog {
	return Catalog{Source: c.Source, PathCollection: c.PathCollection.CollapseDates()}
}
