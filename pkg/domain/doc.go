/*
Package domain contains the core models of the lead-qualification funnel.

It defines the immutable funnel definition (an ordered list of Steps), the mutable
wizard State owned by one visitor, the flat LeadRecord handed to the submission
gateway and the View a rendering layer consumes. The package is free of I/O and
persistence concerns.

# Key Entities

  - Funnel: the fixed, unbranching sequence of Steps shown to every visitor.
  - Step: a single question, either a Choice (one of a fixed set of options) or an Input (free text).
  - State: the per-visitor snapshot (current step, committed answers, pending choice, submission status).
  - LeadRecord: the normalized payload built at submission time.
  - View: what the host should render for a given State.
*/
package domain
