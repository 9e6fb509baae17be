// Package domain models influenza-like-illness (ILI) surveillance data used to
// evaluate nowcasts retrospectively.
//
// # Data Sources
//
// Every dataset is a headerless table keyed by epiweek:
//
//	fluview         epiweek, location, wILI            final (ground truth) values
//	fluview_prelim  epiweek, nat_<lag>, wILI           preliminary national values by report lag
//	sensors         epiweek, sensor, location, value   independent wILI estimators
//	nc_<model>      epiweek, location, value, std      fused nowcasts from one model run
//
// wILI is a percentage, so legitimate values are never negative. Downstream
// rendering relies on that to use -1 as a "no data" marker.
//
// # Locations
//
// Location codes follow the Delphi conventions: "nat" for the United States,
// "hhs1".."hhs10" for HHS regions, "cen1".."cen9" for Census divisions and
// two-letter lowercase codes for states and territories ("pr", "vi").
//
// # Exclusions
//
// Some early nowcasts were produced with no sensor reading for their own
// location, purely by inference from neighbouring locations. They carry much
// larger standard deviations and have nothing to compare against, so the
// evaluation drops them. The rule table lives in [DefaultExclusionRules] and can
// be replaced through configuration.
//
// # Persistence
//
// Nowcasts are stored keyed by (epiweek, location) with upsert semantics. The
// reserved key (0, "updated") carries the Unix time of the last update split
// across the value and std columns, see [UpdateSentinel].
package domain
